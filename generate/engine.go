package generate

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Paranoid-AF/zsh-codex/cache"
	"github.com/Paranoid-AF/zsh-codex/redact"
)

// ZshPrefix is prepended to the buffer to tell the model which shell it is completing for.
const ZshPrefix = "#!/bin/zsh\n\n"

// DefaultTimeout bounds a single vendor call when the section sets no timeout.
const DefaultTimeout = 30 * time.Second

// EngineOptions configures an Engine.
type EngineOptions struct {
	// Service is the active section name, part of the cache key.
	Service string
	// Cache is optional. Nil disables caching.
	Cache *cache.Store
	// Timeout bounds the vendor call. Zero means DefaultTimeout.
	Timeout time.Duration
}

// Result is the outcome of one completion.
type Result struct {
	Prompt     string
	Raw        string // completion as returned by the model
	Completion string // text to insert at the cursor
	Cached     bool
	Duration   time.Duration
}

// Engine wraps a Client with prompt construction, caching and post-processing.
type Engine struct {
	client  Client
	service string
	cache   *cache.Store
	timeout time.Duration
}

// NewEngine creates an Engine around client.
func NewEngine(client Client, opts EngineOptions) *Engine {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Engine{
		client:  client,
		service: opts.Service,
		cache:   opts.Cache,
		timeout: timeout,
	}
}

// Client returns the wrapped adapter.
func (e *Engine) Client() Client { return e.client }

// Complete asks the model to complete buffer, whose cursor sits at rune
// offset cursor, and returns the text to insert at the cursor.
func (e *Engine) Complete(ctx context.Context, buffer string, cursor int) (*Result, error) {
	start := time.Now()
	prompt := BuildPrompt(buffer)

	slog.Debug("completion request",
		"service", e.service,
		"api_type", e.client.Name(),
		"model", e.client.Model(),
		"cursor", cursor,
		"buffer", redact.Command(buffer),
	)

	res := &Result{Prompt: prompt}

	var key string
	if e.cache != nil {
		key = cache.Key(e.service, e.client.Name(), e.client.Model(), prompt)
		if raw, ok := e.cache.Get(key); ok {
			res.Raw = raw
			res.Cached = true
		}
	}

	if !res.Cached {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		raw, err := e.client.Complete(callCtx, prompt)
		cancel()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
				slog.Warn("completion timed out", "service", e.service, "timeout", e.timeout)
			}
			return nil, err
		}
		res.Raw = raw
		if e.cache != nil {
			e.cache.Set(key, raw)
			if err := e.cache.Save(); err != nil {
				slog.Warn("failed to save completion cache", "path", e.cache.Path(), "error", err)
			}
		}
	}

	res.Completion = TrimCompletion(buffer, cursor, res.Raw)
	res.Duration = time.Since(start)

	slog.Debug("completion done",
		"service", e.service,
		"cached", res.Cached,
		"duration", res.Duration,
		"completion", redact.Command(res.Completion),
	)
	return res, nil
}

// BuildPrompt returns the prompt sent to the model for buffer.
func BuildPrompt(buffer string) string {
	return ZshPrefix + buffer
}

// TrimCompletion reduces a model completion to the text to insert at the
// cursor. A leading ZshPrefix echoed back by the model is dropped. If the
// completion repeats the buffer before the cursor it is dropped too, trying
// the whole text first and then the current line. If it ends with the text
// after the cursor, that is dropped as well, since the widget keeps it.
func TrimCompletion(buffer string, cursor int, completion string) string {
	runes := []rune(buffer)
	if cursor < 0 {
		cursor = 0
	}
	if cursor > len(runes) {
		cursor = len(runes)
	}
	before := string(runes[:cursor])
	after := string(runes[cursor:])
	linePrefix := before[strings.LastIndex(before, "\n")+1:]

	completion = strings.TrimPrefix(completion, ZshPrefix)
	if before != "" && strings.HasPrefix(completion, before) {
		completion = completion[len(before):]
	} else {
		completion = strings.TrimPrefix(completion, linePrefix)
	}
	if after != "" {
		completion = strings.TrimSuffix(completion, after)
	}
	return completion
}
