package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/abhisek/quizmate/internal/store"
)

// LoggingProvider records every call as an llm_requests event.
type LoggingProvider struct {
	inner    Provider
	provider string
	events   store.EventRepo
	log      *slog.Logger
}

// WithLogging wraps p. provider is the name stored with each event.
// Failures to record an event are logged to logger and otherwise ignored.
func WithLogging(p Provider, provider string, events store.EventRepo, logger *slog.Logger) *LoggingProvider {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LoggingProvider{inner: p, provider: provider, events: events, log: logger}
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	ev := store.LLMRequestEventData{
		Provider:    l.provider,
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: describeRequest(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	// Recorded even when the caller's context is already cancelled.
	if lerr := l.events.AppendLLMRequest(context.WithoutCancel(ctx), ev); lerr != nil {
		l.log.Warn("record llm request", "error", lerr)
	}
	return resp, err
}

// describeRequest renders req as the text shown by "llm view".
func describeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}
