// Package main implements the esprit developer CLI: a minimal entry
// point to smoke-run a script file through the embedding facade
// (pkg/esprit) during development. The REPL/CLI surface itself is out of
// scope for the engine (see spec.md §6); this exists purely as ambient
// tooling, deliberately limited to a single command.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"esprit/internal/value"
	"esprit/pkg/esprit"
)

var (
	// Global flags
	verbose  bool
	asModule bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "esprit",
	Short: "esprit - a from-scratch ECMAScript engine core",
	Long: `esprit is a from-scratch ECMAScript engine core: lexer, parser,
bytecode compiler, and register/stack VM, with no dependency on any
existing JS implementation.

Run without a subcommand for usage; run "esprit run <file>" to execute a
script through the embedding facade.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// runCmd executes a single script file through the embedding facade.
var runCmd = &cobra.Command{
	Use:   "run [file]",
	Short: "Parse, compile, and evaluate a script file",
	Args:  cobra.ExactArgs(1),
	RunE:  runScriptFile,
}

func runScriptFile(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	ctx := esprit.CreateAgent(nil)

	parse := esprit.ParseScript
	if asModule {
		parse = esprit.ParseModule
	}
	script, err := parse(string(source), ctx)
	if err != nil {
		return fmt.Errorf("parse: %w", err)
	}

	completion, err := esprit.Evaluate(script, ctx)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}
	esprit.DrainJobs(ctx)

	if completion.Thrown {
		return fmt.Errorf("uncaught exception: %s", value.ToStringValue(completion.Value))
	}
	fmt.Println(value.ToStringValue(completion.Value))
	return nil
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	runCmd.Flags().BoolVar(&asModule, "module", false, "Parse the file as a module instead of a script")

	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
