// Package runner drives the full modification pipeline: snapshot the
// project, build the prompt, call the completion API, parse the proposed
// file set, write it to disk, and optionally commit.
//
// The loop retries the whole round trip until a completion both parses and
// applies. Malformed completions and write failures retry immediately;
// transient API failures (rate limits, server errors, network trouble) retry
// with exponential backoff; everything else is fatal. With max_attempts = 0
// the loop runs until canceled.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/codemodkit/codemod/apply"
	"github.com/codemodkit/codemod/config"
	"github.com/codemodkit/codemod/fileset"
	"github.com/codemodkit/codemod/model"
	"github.com/codemodkit/codemod/parser"
	"github.com/codemodkit/codemod/prompt"
	"github.com/codemodkit/codemod/provider"
	"github.com/codemodkit/codemod/snapshot"
	"github.com/codemodkit/codemod/tokens"
	"github.com/codemodkit/codemod/truncate"
	"github.com/codemodkit/codemod/vcs"
)

// Sentinel errors for run outcomes.
var (
	// ErrNoInstruction is returned when the modification request is empty.
	ErrNoInstruction = errors.New("no instruction given")

	// ErrAttemptsExhausted is returned when max_attempts round trips all
	// failed.
	ErrAttemptsExhausted = errors.New("retry attempts exhausted")
)

// Backoff bounds for transient completion failures.
const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// excerptTokens bounds how much of a malformed completion makes it into a
// log line.
const excerptTokens = 60

// State names the pipeline phase a run is in.
type State int

// Pipeline states, in order.
const (
	StateIdle State = iota
	StateScanning
	StateRequesting
	StateParsing
	StateWriting
	StateDone
)

// String returns the lower-case phase name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateRequesting:
		return "requesting"
	case StateParsing:
		return "parsing"
	case StateWriting:
		return "writing"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Result summarizes a completed run.
type Result struct {
	// Paths are the project-relative paths that were written (or, on a dry
	// run, would have been).
	Paths []string

	// Attempts is the number of completion round trips made.
	Attempts int

	// Model is the model that produced the accepted file set.
	Model string

	// Usage is the total token consumption across all attempts.
	Usage provider.TokenUsage

	// Cost is the estimated USD cost across all attempts.
	Cost float64

	// Stale lists files that changed on disk while the run was in flight
	// and were then overwritten.
	Stale []string

	// DryRun reports whether writing was skipped.
	DryRun bool
}

// Runner executes modification runs against one project directory.
type Runner struct {
	cfg      config.Config
	root     string
	client   provider.Client
	builder  *prompt.Builder
	parser   *parser.Parser
	chain    *model.EscalationChain
	log      *zap.Logger
	progress *Progress

	// sleep is overridable so tests do not wait out real backoff.
	sleep func(ctx context.Context, d time.Duration) error
}

// Option customizes a Runner.
type Option func(*Runner)

// WithLogger sets the structured logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Runner) { r.log = log }
}

// WithProgressWriter redirects the live status line.
func WithProgressWriter(w io.Writer) Option {
	return func(r *Runner) { r.progress = NewProgress(w) }
}

// New creates a runner for the given project root.
func New(cfg config.Config, root string, client provider.Client, opts ...Option) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	builder, err := prompt.NewBuilder(cfg.Language)
	if err != nil {
		return nil, err
	}

	r := &Runner{
		cfg:      cfg,
		root:     root,
		client:   client,
		builder:  builder,
		parser:   parser.New(),
		chain:    model.NewChain(cfg.Model, cfg.FallbackModel, cfg.EscalateAfter),
		log:      zap.NewNop(),
		progress: NewProgress(os.Stderr),
		sleep:    sleepCtx,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run executes one modification request end to end.
func (r *Runner) Run(ctx context.Context, instruction string) (*Result, error) {
	if instruction == "" {
		return nil, ErrNoInstruction
	}

	var git *vcs.Git
	if r.cfg.Git {
		g, err := vcs.New(r.root)
		if err != nil {
			return nil, err
		}
		if err := g.RequireClean(); err != nil {
			return nil, err
		}
		git = g
	}

	r.progress.Start()
	defer r.progress.Stop()
	r.setState(StateScanning)

	snap, err := snapshot.Scan(r.root, r.cfg.Exclude)
	if err != nil {
		return nil, err
	}
	r.log.Debug("project captured",
		zap.String("root", snap.Root),
		zap.Int("files", snap.Len()))

	system, user, err := r.builder.Build(instruction, snap)
	if err != nil {
		return nil, err
	}

	startModel, err := r.preflight(system + user)
	if err != nil {
		return nil, err
	}

	// Staleness watching is advisory; a failed watcher never fails the run.
	watcher, err := snapshot.Watch(r.root, r.cfg.Exclude)
	if err != nil {
		r.log.Debug("staleness watcher unavailable", zap.Error(err))
		watcher = nil
	} else {
		defer watcher.Close()
	}

	result, err := r.loop(ctx, system, user, startModel, watcher)
	if err != nil {
		return nil, err
	}

	if !result.DryRun && git != nil {
		r.log.Debug("committing applied changes")
		if err := git.CommitAll("codemod: " + instruction); err != nil {
			return result, err
		}
	}

	r.setState(StateDone)
	r.log.Info("run complete",
		zap.Int("attempts", result.Attempts),
		zap.String("model", result.Model),
		zap.Int("input_tokens", result.Usage.InputTokens),
		zap.Int("output_tokens", result.Usage.OutputTokens),
		zap.Float64("estimated_cost_usd", result.Cost))
	return result, nil
}

// loop retries the request/parse/write round trip until one succeeds.
func (r *Runner) loop(ctx context.Context, system, user, startModel string, watcher *snapshot.Watcher) (*Result, error) {
	messages := []provider.Message{
		{Role: provider.RoleSystem, Content: system},
		{Role: provider.RoleUser, Content: user},
	}

	result := &Result{DryRun: r.cfg.DryRun}
	backoff := initialBackoff
	parseFailures := 0
	current := startModel

	for {
		if r.cfg.MaxAttempts > 0 && result.Attempts >= r.cfg.MaxAttempts {
			return nil, fmt.Errorf("%w after %d attempts", ErrAttemptsExhausted, result.Attempts)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result.Attempts++

		next := r.pick(parseFailures, startModel)
		if next != current {
			r.log.Warn("escalating model",
				zap.String("from", current),
				zap.String("to", next),
				zap.Int("parse_failures", parseFailures))
			current = next
		}

		r.setState(StateRequesting)
		resp, err := r.client.Complete(ctx, provider.Request{
			Model:       current,
			Messages:    messages,
			MaxTokens:   r.cfg.MaxTokens,
			Temperature: r.cfg.Temperature,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !provider.IsRetryable(err) {
				return nil, err
			}
			r.log.Warn("completion failed, backing off",
				zap.Int("attempt", result.Attempts),
				zap.Duration("backoff", backoff),
				zap.Error(err))
			if err := r.sleep(ctx, backoff); err != nil {
				return nil, err
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = initialBackoff

		result.Usage.Add(resp.Usage)
		result.Cost += model.EstimateCost(resp.Model, resp.Usage.InputTokens, resp.Usage.OutputTokens)
		result.Model = resp.Model

		r.setState(StateParsing)
		fs, err := r.parser.Extract(resp.Content)
		if err != nil {
			parseFailures++
			r.log.Warn("completion did not parse, retrying",
				zap.Int("attempt", result.Attempts),
				zap.String("excerpt", truncate.Excerpt(resp.Content, excerptTokens)),
				zap.Error(err))
			continue
		}
		parseFailures = 0

		r.setState(StateWriting)
		result.Paths = fs.Paths()
		result.Stale = r.staleOverlap(watcher, fs)

		if r.cfg.DryRun {
			return result, nil
		}
		if err := apply.Files(fs, r.root); err != nil {
			r.log.Warn("write failed, retrying round trip",
				zap.Int("attempt", result.Attempts),
				zap.Error(err))
			continue
		}
		return result, nil
	}
}

// preflight checks the prompt against the context window before the first
// request. If the primary model cannot hold the prompt but a fallback can,
// the run starts escalated.
func (r *Runner) preflight(promptText string) (string, error) {
	primary := r.chain.Models[0]
	if tokens.FitsModel(promptText, primary) {
		return primary, nil
	}

	highest := r.chain.Highest()
	if highest != primary && tokens.FitsModel(promptText, highest) {
		r.log.Warn("prompt exceeds primary model context, starting on fallback",
			zap.String("primary", primary),
			zap.String("fallback", highest),
			zap.Int("estimated_tokens", tokens.EstimateTokens(promptText)))
		return highest, nil
	}

	return "", fmt.Errorf("%w: ~%d tokens for model %s",
		provider.ErrContextTooLong, tokens.EstimateTokens(promptText), highest)
}

// pick chooses the model for the next attempt, never dropping below the
// preflight starting point.
func (r *Runner) pick(parseFailures int, startModel string) string {
	picked := r.chain.Pick(parseFailures)
	if picked == r.chain.Models[0] && startModel != picked {
		return startModel
	}
	return picked
}

// staleOverlap warns about files modified on disk during the round trip that
// the accepted file set is about to overwrite.
func (r *Runner) staleOverlap(watcher *snapshot.Watcher, fs *fileset.FileSet) []string {
	if watcher == nil {
		return nil
	}

	changed := make(map[string]bool)
	for _, p := range watcher.Changed() {
		changed[p] = true
	}

	var stale []string
	for _, p := range fs.Paths() {
		if changed[p] {
			stale = append(stale, p)
		}
	}
	if len(stale) > 0 {
		r.log.Warn("files changed on disk during the run and will be overwritten",
			zap.Strings("paths", stale))
	}
	return stale
}

func (r *Runner) setState(s State) {
	r.progress.SetPhase(s.String())
	r.log.Debug("state", zap.Stringer("state", s))
}

// sleepCtx sleeps for d or until ctx is canceled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
