// Command codemod applies a natural-language modification request to the
// project in the current directory using an LLM completion API.
//
//	codemod "add input validation to the signup handler"
package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/codemodkit/codemod/config"
	"github.com/codemodkit/codemod/provider"
	_ "github.com/codemodkit/codemod/providers"
	"github.com/codemodkit/codemod/runner"
	"github.com/codemodkit/codemod/vcs"
)

var (
	flagConfig        string
	flagDir           string
	flagEndpoint      string
	flagModel         string
	flagFallbackModel string
	flagLanguage      string
	flagGit           bool
	flagMaxAttempts   int
	flagTimeout       time.Duration
	flagDryRun        bool
	flagVerbose       bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "codemod [instruction...]",
	Short: "Apply a natural-language code modification to the current project",
	Long: `codemod snapshots the project's source files, sends them to an LLM
completion API together with your instruction, and writes the returned files
back to disk. Malformed responses are retried until one parses.

The instruction is everything after the flags:

  codemod "add a --json flag to the export command"
  codemod --git --model gpt-4o "rename User.Name to User.FullName everywhere"`,
	Args:          cobra.MinimumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Encoding = "console"
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		if flagVerbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: run,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&flagConfig, "config", "", "path to a codemod.toml/.yaml config file")
	flags.StringVarP(&flagDir, "dir", "C", ".", "project directory to modify")
	flags.StringVar(&flagEndpoint, "endpoint", "", "completion API base URL")
	flags.StringVar(&flagModel, "model", "", "model to request")
	flags.StringVar(&flagFallbackModel, "fallback-model", "", "model to escalate to after repeated malformed responses")
	flags.StringVar(&flagLanguage, "language", "", "source language label for the prompt")
	flags.BoolVar(&flagGit, "git", false, "require a clean working tree and commit applied changes")
	flags.IntVar(&flagMaxAttempts, "max-attempts", 0, "cap on retry attempts (0 = retry until canceled)")
	flags.DurationVar(&flagTimeout, "timeout", 0, "per-request timeout")
	flags.BoolVar(&flagDryRun, "dry-run", false, "show the proposed files without writing them")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig, flagDir)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)

	if err := cfg.Validate(); err != nil {
		return err
	}

	client, err := provider.New(cfg.Provider, cfg.ProviderConfig())
	if err != nil {
		return err
	}
	defer client.Close()

	r, err := runner.New(cfg, flagDir, client, runner.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	instruction := strings.Join(args, " ")
	result, err := r.Run(ctx, instruction)
	if err != nil {
		return err
	}

	report(result)
	return nil
}

// applyFlags overlays explicitly-set flags on the loaded configuration.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("endpoint") {
		cfg.Endpoint = flagEndpoint
	}
	if flags.Changed("model") {
		cfg.Model = flagModel
	}
	if flags.Changed("fallback-model") {
		cfg.FallbackModel = flagFallbackModel
	}
	if flags.Changed("language") {
		cfg.Language = flagLanguage
	}
	if flags.Changed("git") {
		cfg.Git = flagGit
	}
	if flags.Changed("max-attempts") {
		cfg.MaxAttempts = flagMaxAttempts
	}
	if flags.Changed("timeout") {
		cfg.Timeout = config.Duration(flagTimeout)
	}
	cfg.DryRun = flagDryRun
	cfg.Verbose = flagVerbose
}

func report(result *runner.Result) {
	verb := "wrote"
	if result.DryRun {
		verb = "would write"
	}
	fmt.Printf("%s %d file(s) after %d attempt(s) using %s:\n",
		verb, len(result.Paths), result.Attempts, result.Model)
	for _, p := range result.Paths {
		fmt.Printf("  %s\n", p)
	}
	for _, p := range result.Stale {
		fmt.Printf("warning: %s changed on disk during the run and was overwritten\n", p)
	}
	if result.Cost > 0 {
		fmt.Printf("estimated cost: $%.4f (%d input / %d output tokens)\n",
			result.Cost, result.Usage.InputTokens, result.Usage.OutputTokens)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "codemod: %v\n", err)
		if errors.Is(err, vcs.ErrDirtyTree) {
			fmt.Fprintln(os.Stderr, "commit or stash your changes, or run without --git")
		}
		os.Exit(1)
	}
}
