// Package openai implements the language-model provider against an
// OpenAI-compatible chat-completions API. Slot evaluation stays in the
// engine; only intent parsing and clarification generation leave the process.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/slotwise/scheduler/internal/model"
	"github.com/slotwise/scheduler/internal/provider"
)

// rateLimitRetries is how many times a rate-limited call is retried before
// the error surfaces to the caller.
const rateLimitRetries = 3

// Config carries the connection settings for an OpenAI-compatible endpoint.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
	// RetryInitialWait is the first rate-limit backoff interval, doubling on
	// each retry. Defaults to one second.
	RetryInitialWait time.Duration
}

// Provider calls an OpenAI-compatible backend for parsing and clarification
// and delegates slot suggestion to the engine's suggester.
type Provider struct {
	client    *resty.Client
	model     string
	retryWait time.Duration
	suggester provider.Suggester
	log       zerolog.Logger
}

// New constructs the provider. A missing API key is a construction failure;
// callers fall back to the deterministic provider.
func New(cfg Config, suggester provider.Suggester, log zerolog.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: openai api key not configured", model.ErrProviderUnavailable)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: openai model not configured", model.ErrProviderUnavailable)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	retryWait := cfg.RetryInitialWait
	if retryWait <= 0 {
		retryWait = time.Second
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Provider{client: client, model: cfg.Model, retryWait: retryWait, suggester: suggester, log: log}, nil
}

const parseSystemPrompt = `You convert scheduling requests into JSON. Respond with a single JSON object using these fields when known: title, description, start (RFC3339), end (RFC3339), durationMinutes, recurrence {frequency: daily|weekly|monthly, interval, daysOfWeek}, attendees, location, priority (low|medium|high), isFlexible, isImmutable, confidence (0-1), ambiguities (names of fields you could not resolve, e.g. "start_time", "title"). Output JSON only, no prose.`

func (p *Provider) ParseIntent(ctx context.Context, text string, sc model.SchedulingContext) (model.ParsedIntent, error) {
	user := fmt.Sprintf("Reference time: %s\nRequest: %s", sc.WindowStart.Format(time.RFC3339), text)
	content, err := p.chat(ctx, parseSystemPrompt, user)
	if err != nil {
		return model.ParsedIntent{}, err
	}

	var out model.ParsedIntent
	if err := json.Unmarshal([]byte(stripFences(content)), &out); err != nil {
		return model.ParsedIntent{}, fmt.Errorf("decode intent response: %w", err)
	}
	out.Priority = model.ParsePriority(string(out.Priority))
	if out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}
	return out, nil
}

// SuggestSlots delegates to the engine; candidate generation and scoring are
// not language-model work.
func (p *Provider) SuggestSlots(ctx context.Context, sc model.SchedulingContext) ([]model.SuggestedSlot, error) {
	return p.suggester.Suggest(ctx, sc)
}

func (p *Provider) GenerateClarification(ctx context.Context, text string, ambiguities []string) (string, error) {
	system := "You help schedule events. Ask one short, friendly question that resolves the listed ambiguities. Respond with the question only."
	user := fmt.Sprintf("Request: %s\nAmbiguities: %s", text, strings.Join(ambiguities, ", "))
	return p.chat(ctx, system, user)
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// chat performs one completion with rate-limit-aware retry: rate-limited
// calls back off exponentially from the initial wait, doubling, up to
// rateLimitRetries retries; every other failure propagates immediately.
func (p *Provider) chat(ctx context.Context, system, user string) (string, error) {
	var content string

	op := func() error {
		var out chatResponse
		resp, err := p.client.R().
			SetContext(ctx).
			SetBody(chatRequest{
				Model: p.model,
				Messages: []chatMessage{
					{Role: "system", Content: system},
					{Role: "user", Content: user},
				},
			}).
			SetResult(&out).
			Post("/chat/completions")
		if err != nil {
			if IsRateLimited(err.Error()) {
				return err
			}
			return backoff.Permanent(err)
		}
		if resp.IsError() {
			msg := fmt.Sprintf("openai status %d: %s", resp.StatusCode(), resp.String())
			if IsRateLimited(msg) {
				p.log.Warn().Int("status", resp.StatusCode()).Msg("provider rate limited, backing off")
				return fmt.Errorf("%s", msg)
			}
			return backoff.Permanent(fmt.Errorf("%s", msg))
		}
		if out.Error != nil {
			return backoff.Permanent(fmt.Errorf("openai error: %s", out.Error.Message))
		}
		if len(out.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("openai returned no choices"))
		}
		content = out.Choices[0].Message.Content
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.retryWait
	bo.Multiplier = 2
	bo.RandomizationFactor = 0

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, rateLimitRetries), ctx))
	if err != nil {
		if IsRateLimited(err.Error()) {
			return "", fmt.Errorf("%w: %s", model.ErrRateLimited, err)
		}
		return "", err
	}
	return content, nil
}

// IsRateLimited classifies a provider failure as rate limiting from its
// error text.
func IsRateLimited(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "429") ||
		strings.Contains(lower, "quota") ||
		strings.Contains(lower, "rate limit")
}

// stripFences removes a markdown code fence if the model wrapped its JSON.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
