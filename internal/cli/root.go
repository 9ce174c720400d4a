// Package cli provides the cobra command tree for evalgate.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/version"
)

// exitError carries a process exit code through cobra's error return.
// Decision exits wrap no message; the report is already on stdout.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return ""
}

func (e *exitError) Unwrap() error { return e.err }

// ExitCode maps an Execute error to the process exit code: 0 on nil,
// the carried code for decision exits, 3 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return 3
}

// configPath stores the parsed --config flag for access by subcommands.
var configPath string

// logger is replaced by Execute; commands log through it so tests that
// build commands directly stay quiet.
var logger = zap.NewNop()

// NewRootCmd creates the root cobra command for evalgate.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "evalgate",
		Short: "Release gate for AI eval results",
		Long: `evalgate - deterministic release gate for AI eval results

Evalgate reads eval-tool exports (CSV, JSON, JSONL), checks them against a
declarative contract, and answers PASS, BLOCK, or REQUIRES_APPROVAL.
Decisions can be persisted as tamper-evident records in a local or shared
ledger.

Exit codes: 0 PASS, 1 BLOCK, 2 REQUIRES_APPROVAL, 3 any error.`,
		Version:       version.FullVersion(),
		SilenceErrors: true, // main.go owns error printing
		SilenceUsage:  true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to evalgate.yaml")

	rootCmd.AddCommand(
		newCheckCmd(),
		newValidateCmd(),
		newDiffCmd(),
		newRecordCmd(),
		newAdaptersCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command with the given output writers.
// This is the main entry point from main.go.
func Execute(stdout, stderr io.Writer) error {
	logger = mustBuildLogger(envOrDefault("EVALGATE_LOG_LEVEL", "warn"))
	defer logger.Sync() //nolint:errcheck // best-effort flush

	rootCmd := NewRootCmd()
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.Execute()
}

// mustBuildLogger builds a JSON logger on stderr; stdout stays reserved
// for reports.
func mustBuildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.WarnLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Development:      false,
		Encoding:         "json",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build logger: %v", err))
	}
	return logger
}

func envOrDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
