// Package intent turns free-text scheduling requests into structured intents.
//
// Extraction is deterministic and never fails: fields that cannot be resolved
// stay absent and are recorded as ambiguities so callers can ask for
// clarification instead of guessing.
package intent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"

	"github.com/slotwise/scheduler/internal/model"
)

// defaultConfidence is reported for every deterministic extraction; this path
// is not probabilistic, ambiguities carry the real uncertainty signal.
const defaultConfidence = 0.6

var dateParser = func() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}()

var (
	titleBoundaryRe = regexp.MustCompile(`(?i)\b(at|on|tomorrow|next|every|for)\b`)
	hoursRe         = regexp.MustCompile(`(?i)\b(\d+)\s*(?:hours?|hrs?|hr|h)\b`)
	minutesRe       = regexp.MustCompile(`(?i)\b(\d+)\s*(?:minutes?|mins?|min|m)\b`)
	durationAnyRe   = regexp.MustCompile(`(?i)\b\d+\s*(?:hours?|hrs?|hr|h|minutes?|mins?|min|m)\b`)
	emailRe         = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	clockRe         = `(\d{1,2}(?::\d{2})?\s*(?:am|pm)?)`
	notBeforeRe     = regexp.MustCompile(`(?i)\bnot before ` + clockRe)
	notAfterRe      = regexp.MustCompile(`(?i)\bnot after ` + clockRe)
	bareBeforeRe    = regexp.MustCompile(`(?i)\bbefore ` + clockRe)
	bareAfterRe     = regexp.MustCompile(`(?i)\bafter ` + clockRe)
	weekdayRe       = regexp.MustCompile(`(?i)\b(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tues|tue|wed|thurs|thur|thu|fri|sat|sun|weekdays?|weekends?)\b`)
)

var weekdayNames = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday, "tues": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday, "thur": time.Thursday, "thurs": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// Extract parses text into a ParsedIntent relative to ref. It always succeeds;
// unresolved fields are reported through the intent's Ambiguities.
func Extract(text string, ref time.Time) model.ParsedIntent {
	lower := strings.ToLower(text)

	out := model.ParsedIntent{
		Priority:   extractPriority(lower),
		Confidence: defaultConfidence,
	}

	if title := extractTitle(text); title != "" {
		out.Title = &title
	} else {
		out.Ambiguities = append(out.Ambiguities, model.AmbiguityTitle)
	}

	start, end := extractTimes(text, ref)
	durationMin := extractDuration(text)

	switch {
	case start != nil && end != nil:
		d := int(end.Sub(*start).Minutes())
		durationMin = &d
	case start != nil && durationMin != nil:
		e := start.Add(time.Duration(*durationMin) * time.Minute)
		end = &e
	}
	out.Start = start
	out.End = end
	out.DurationMinutes = durationMin
	if start == nil {
		out.Ambiguities = append(out.Ambiguities, model.AmbiguityStartTime)
	}

	days := extractWeekdays(lower)
	out.Recurrence = extractRecurrence(lower, days)
	out.Constraints = extractConstraints(lower, days)
	out.Attendees = extractAttendees(text)

	if strings.Contains(lower, "flexible") || strings.Contains(lower, "whenever") {
		out.IsFlexible = true
	}
	if strings.Contains(lower, "must be") || strings.Contains(lower, "cannot move") {
		out.IsImmutable = true
	}

	return out
}

// extractTitle takes the text up to the first temporal keyword, falling back
// to the first five tokens.
func extractTitle(text string) string {
	if loc := titleBoundaryRe.FindStringIndex(text); loc != nil {
		if title := strings.Trim(strings.TrimSpace(text[:loc[0]]), ",.;:"); title != "" {
			return title
		}
	}
	fields := strings.Fields(text)
	if len(fields) > 5 {
		fields = fields[:5]
	}
	return strings.Trim(strings.Join(fields, " "), ",.;:")
}

// extractTimes finds a start phrase and, when present, a distinct end phrase
// later in the text. Duration phrases are stripped before the end lookup so
// "for 30 minutes" is never misread as an end time.
func extractTimes(text string, ref time.Time) (*time.Time, *time.Time) {
	r, err := dateParser.Parse(text, ref)
	if err != nil || r == nil {
		return nil, nil
	}
	start := r.Time

	rest := durationAnyRe.ReplaceAllString(text[r.Index+len(r.Text):], "")
	if r2, err := dateParser.Parse(rest, start); err == nil && r2 != nil && r2.Time.After(start) {
		end := r2.Time
		return &start, &end
	}
	return &start, nil
}

func extractDuration(text string) *int {
	total := 0
	if m := hoursRe.FindStringSubmatch(text); m != nil {
		if h, err := strconv.Atoi(m[1]); err == nil {
			total += h * 60
		}
	}
	if m := minutesRe.FindStringSubmatch(text); m != nil {
		if min, err := strconv.Atoi(m[1]); err == nil {
			total += min
		}
	}
	if total == 0 {
		return nil
	}
	return &total
}

func extractWeekdays(lower string) []time.Weekday {
	seen := map[time.Weekday]bool{}
	var days []time.Weekday
	add := func(d time.Weekday) {
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	for _, m := range weekdayRe.FindAllString(lower, -1) {
		word := strings.TrimSuffix(strings.ToLower(m), "s")
		switch word {
		case "weekday":
			for d := time.Monday; d <= time.Friday; d++ {
				add(d)
			}
		case "weekend":
			add(time.Saturday)
			add(time.Sunday)
		default:
			if d, ok := weekdayNames[word]; ok {
				add(d)
			}
		}
	}
	return days
}

func extractRecurrence(lower string, days []time.Weekday) *model.Recurrence {
	switch {
	case strings.Contains(lower, "every day") || strings.Contains(lower, "daily"):
		return &model.Recurrence{Frequency: model.FreqDaily, Interval: 1}
	case strings.Contains(lower, "every week") || strings.Contains(lower, "weekly"):
		return &model.Recurrence{Frequency: model.FreqWeekly, Interval: 1, DaysOfWeek: days}
	case strings.Contains(lower, "every month") || strings.Contains(lower, "monthly"):
		return &model.Recurrence{Frequency: model.FreqMonthly, Interval: 1}
	case strings.Contains(lower, "every") && len(days) > 0:
		return &model.Recurrence{Frequency: model.FreqWeekly, Interval: 1, DaysOfWeek: days}
	}
	return nil
}

func extractConstraints(lower string, days []time.Weekday) model.Constraints {
	var cons model.Constraints

	if m := notBeforeRe.FindStringSubmatch(lower); m != nil {
		if tod, ok := parseClock(m[1]); ok {
			cons.NotBefore = &tod
		}
	}
	if m := notAfterRe.FindStringSubmatch(lower); m != nil {
		if tod, ok := parseClock(m[1]); ok {
			cons.NotAfter = &tod
		}
	}

	// Bare before/after only bind when the explicit forms have not; strip the
	// "not ..." phrases first so they are not re-matched.
	stripped := notBeforeRe.ReplaceAllString(lower, "")
	stripped = notAfterRe.ReplaceAllString(stripped, "")
	if cons.NotAfter == nil {
		if m := bareBeforeRe.FindStringSubmatch(stripped); m != nil {
			if tod, ok := parseClock(m[1]); ok {
				cons.NotAfter = &tod
			}
		}
	}
	if cons.NotBefore == nil {
		if m := bareAfterRe.FindStringSubmatch(stripped); m != nil {
			if tod, ok := parseClock(m[1]); ok {
				cons.NotBefore = &tod
			}
		}
	}

	cons.PreferredDays = days
	return cons
}

// parseClock reads "10", "10am", "10:30pm" or "14:00" into a TimeOfDay.
func parseClock(s string) (model.TimeOfDay, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	meridiem := ""
	for _, suffix := range []string{"am", "pm"} {
		if strings.HasSuffix(s, suffix) {
			meridiem = suffix
			s = strings.TrimSpace(strings.TrimSuffix(s, suffix))
		}
	}
	hour, minute := 0, 0
	parts := strings.SplitN(s, ":", 2)
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return model.TimeOfDay{}, false
	}
	hour = h
	if len(parts) == 2 {
		m, err := strconv.Atoi(parts[1])
		if err != nil {
			return model.TimeOfDay{}, false
		}
		minute = m
	}
	switch meridiem {
	case "pm":
		if hour < 12 {
			hour += 12
		}
	case "am":
		if hour == 12 {
			hour = 0
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return model.TimeOfDay{}, false
	}
	return model.TimeOfDay{Hour: hour, Minute: minute}, true
}

func extractPriority(lower string) model.Priority {
	switch {
	case strings.Contains(lower, "urgent") || strings.Contains(lower, "important"):
		return model.PriorityHigh
	case strings.Contains(lower, "low priority") || strings.Contains(lower, "optional"):
		return model.PriorityLow
	}
	return model.PriorityMedium
}

// extractAttendees collects email addresses plus capitalized name sequences
// following "with".
func extractAttendees(text string) []string {
	seen := map[string]bool{}
	var attendees []string
	add := func(a string) {
		if a != "" && !seen[a] {
			seen[a] = true
			attendees = append(attendees, a)
		}
	}

	for _, email := range emailRe.FindAllString(text, -1) {
		add(email)
	}

	lower := strings.ToLower(text)
	idx := strings.Index(lower, "with ")
	if idx < 0 {
		return attendees
	}
	for _, tok := range strings.Fields(text[idx+len("with "):]) {
		word := strings.Trim(tok, ",.;:")
		if word == "and" || word == "," {
			continue
		}
		if !isCapitalizedName(word) {
			break
		}
		add(word)
	}
	return attendees
}

func isCapitalizedName(word string) bool {
	if word == "" || word[0] < 'A' || word[0] > 'Z' {
		return false
	}
	for _, r := range word {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r == '\'' || r == '-') {
			return false
		}
	}
	return true
}
