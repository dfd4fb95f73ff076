package recurrence

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slotwise/scheduler/internal/model"
)

var anchor = time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC) // a Tuesday

func TestRuleString_Weekly(t *testing.T) {
	rule, err := RuleString(model.Recurrence{
		Frequency:  model.FreqWeekly,
		Interval:   1,
		DaysOfWeek: []time.Weekday{time.Monday, time.Wednesday},
	}, anchor)
	require.NoError(t, err)
	assert.Contains(t, rule, "FREQ=WEEKLY")
	assert.Contains(t, rule, "MO")
	assert.Contains(t, rule, "WE")
}

func TestRuleString_UnknownFrequency(t *testing.T) {
	_, err := RuleString(model.Recurrence{Frequency: "yearly"}, anchor)
	assert.Error(t, err)
}

func TestExpand_DailyCount(t *testing.T) {
	rule, err := RuleString(model.Recurrence{Frequency: model.FreqDaily, Interval: 1}, anchor)
	require.NoError(t, err)

	occ, err := Expand(rule, anchor, anchor, anchor.AddDate(0, 0, 6))
	require.NoError(t, err)
	assert.Len(t, occ, 7)
	assert.True(t, occ[0].Equal(anchor))
}

func TestExpand_WeeklyOnDays(t *testing.T) {
	rule, err := RuleString(model.Recurrence{
		Frequency:  model.FreqWeekly,
		Interval:   1,
		DaysOfWeek: []time.Weekday{time.Friday},
	}, anchor)
	require.NoError(t, err)

	occ, err := Expand(rule, anchor, anchor, anchor.AddDate(0, 0, 14))
	require.NoError(t, err)
	require.NotEmpty(t, occ)
	for _, o := range occ {
		assert.Equal(t, time.Friday, o.Weekday())
	}
}

func TestExpand_RespectsInterval(t *testing.T) {
	rule, err := RuleString(model.Recurrence{Frequency: model.FreqDaily, Interval: 2}, anchor)
	require.NoError(t, err)

	occ, err := Expand(rule, anchor, anchor, anchor.AddDate(0, 0, 6))
	require.NoError(t, err)
	assert.Len(t, occ, 4)
}

func TestExpand_InvalidRule(t *testing.T) {
	_, err := Expand("NOT A RULE", anchor, anchor, anchor.AddDate(0, 0, 1))
	assert.Error(t, err)
}
