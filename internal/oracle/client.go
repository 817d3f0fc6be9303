package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/JaimeStill/go-agents/pkg/agent"
	gaconfig "github.com/JaimeStill/go-agents/pkg/config"

	"github.com/minsuklee/fundscope/internal/scoring"
	"github.com/minsuklee/fundscope/pkg/formatting"
)

// Options control the client's retry and timeout behavior.
type Options struct {
	// Attempts is the total number of tries, including the first.
	Attempts int

	// Timeout bounds each individual attempt.
	Timeout time.Duration

	// Backoff is the delay before the second attempt; each subsequent
	// retry doubles it.
	Backoff time.Duration
}

// chatFunc performs one model exchange and returns the raw response text.
// Implementations classify their own failures: errors wrapping ErrUnavailable
// are retried, anything else is terminal.
type chatFunc func(ctx context.Context, prompt string) (string, error)

// Client is the go-agents backed Oracle implementation. Safe for concurrent
// use.
type Client struct {
	chat   chatFunc
	opts   Options
	logger *slog.Logger
}

func NewClient(cfg gaconfig.AgentConfig, opts Options, logger *slog.Logger) *Client {
	return newClient(agentChat(cfg), opts, logger)
}

func newClient(chat chatFunc, opts Options, logger *slog.Logger) *Client {
	if opts.Attempts < 1 {
		opts.Attempts = 1
	}
	return &Client{
		chat:   chat,
		opts:   opts,
		logger: logger.With("system", "oracle"),
	}
}

// agentChat creates a fresh agent per exchange so concurrent assessments
// never share provider state.
func agentChat(cfg gaconfig.AgentConfig) chatFunc {
	return func(ctx context.Context, prompt string) (string, error) {
		a, err := agent.New(&cfg)
		if err != nil {
			return "", fmt.Errorf("create agent: %w", err)
		}

		resp, err := a.Chat(ctx, prompt)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrUnavailable, err)
		}

		return resp.Content(), nil
	}
}

// Assess sends the announcement to the model and returns its validated
// assessment. Only ErrUnavailable failures are retried; an invalid response
// fails immediately.
func (c *Client) Assess(ctx context.Context, req Request) (*scoring.Assessment, error) {
	prompt := buildPrompt(req)

	var last error
	for attempt := 1; attempt <= c.opts.Attempts; attempt++ {
		if attempt > 1 {
			if err := c.wait(ctx, attempt); err != nil {
				return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
			}
		}

		assessment, err := c.attempt(ctx, prompt, req.Rubric)
		if err == nil {
			return assessment, nil
		}
		if !errors.Is(err, ErrUnavailable) {
			return nil, err
		}

		last = err
		c.logger.Warn("oracle attempt failed",
			"attempt", attempt,
			"max_attempts", c.opts.Attempts,
			"title", req.Title,
			"error", err,
		)
	}

	return nil, last
}

func (c *Client) attempt(ctx context.Context, prompt string, rubric scoring.Rubric) (*scoring.Assessment, error) {
	actx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	content, err := c.chat(actx, prompt)
	if err != nil {
		return nil, err
	}

	parsed, err := formatting.Parse[scoring.Assessment](content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResponseInvalid, err)
	}

	if err := validateAssessment(&parsed, rubric); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResponseInvalid, err)
	}

	return &parsed, nil
}

// wait sleeps for the exponential backoff delay preceding the given attempt,
// honoring context cancellation.
func (c *Client) wait(ctx context.Context, attempt int) error {
	delay := c.opts.Backoff << (attempt - 2)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// validateAssessment rejects payloads the engine cannot meaningfully
// combine. Out-of-range sub-scores are left to the engine's clamping; only
// structurally broken answers are refused.
func validateAssessment(a *scoring.Assessment, rubric scoring.Rubric) error {
	if a.Breakdown.DomainFit < 0 || a.Breakdown.RoleFit < 0 || a.Breakdown.TechFit < 0 {
		return fmt.Errorf("negative sub-score (domain=%d role=%d tech=%d)",
			a.Breakdown.DomainFit, a.Breakdown.RoleFit, a.Breakdown.TechFit)
	}

	limit := rubric.DomainFitMax + rubric.RoleFitMax + rubric.TechFitMax
	if sum := a.Breakdown.DomainFit + a.Breakdown.RoleFit + a.Breakdown.TechFit; sum > 2*limit {
		return fmt.Errorf("sub-score total %d implausible for a %d-point rubric", sum, limit)
	}

	if a.Summary == "" {
		return errors.New("missing summary")
	}

	return nil
}
