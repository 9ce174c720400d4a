package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/grade"
	"github.com/evalgate/evalgate/internal/ledger"
	"github.com/evalgate/evalgate/internal/record"
	"github.com/evalgate/evalgate/pkg/types"
)

func newRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Inspect and verify decision records",
	}
	cmd.AddCommand(newRecordShowCmd(), newRecordVerifyCmd(), newRecordGradeCmd(), newRecordListCmd())
	return cmd
}

func readRecordFile(path string) (types.DecisionRecord, error) {
	// #nosec G304 -- path comes from operator-supplied CLI arguments.
	data, err := os.ReadFile(path)
	if err != nil {
		return types.DecisionRecord{}, err
	}
	var rec types.DecisionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return types.DecisionRecord{}, fmt.Errorf("record file %s: %w", path, err)
	}
	return rec, nil
}

func newRecordShowCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Print a decision record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("--output must be text or json, got %q", output)
			}

			rec, err := readRecordFile(args[0])
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if output == "json" {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rec)
			}
			renderRecord(stdout, rec)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "text", "output format: text or json")
	return cmd
}

func newRecordVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <file>",
		Short: "Recompute a record's digest and compare it to its record_id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := readRecordFile(args[0])
			if err != nil {
				return err
			}

			ok, err := record.VerifyRecord(rec)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("record %s failed verification: body does not match record_id", rec.RecordID)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "record %s verified\n", rec.RecordID)
			return nil
		},
	}
	return cmd
}

func newRecordGradeCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "grade <file>",
		Short: "Score the audit completeness of a decision record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("--output must be text or json, got %q", output)
			}

			rec, err := readRecordFile(args[0])
			if err != nil {
				return err
			}

			verified, err := record.VerifyRecord(rec)
			if err != nil {
				return err
			}
			result := grade.Evaluate(grade.Input{Verified: verified, Record: rec})

			stdout := cmd.OutOrStdout()
			if output == "json" {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			fmt.Fprintf(stdout, "grade: %s\n", result.Grade)
			for _, r := range result.Reasons {
				fmt.Fprintf(stdout, "  - %s\n", r)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "text", "output format: text or json")
	return cmd
}

func newRecordListCmd() *cobra.Command {
	var (
		environment string
		decision    string
		commit      string
		limit       int
		output      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored decision records, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("--output must be text or json, got %q", output)
			}

			cfg, err := config.LoadOptional(configPath)
			if err != nil {
				return err
			}
			s, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			rows, err := s.ListRecords(ledger.RecordQuery{
				Environment: environment,
				Decision:    decision,
				Commit:      commit,
				Limit:       limit,
			})
			if err != nil {
				return err
			}

			stdout := cmd.OutOrStdout()
			if output == "json" {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			renderRecordRows(stdout, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&environment, "env", "", "filter by environment")
	cmd.Flags().StringVar(&decision, "decision", "", "filter by decision status")
	cmd.Flags().StringVar(&commit, "commit", "", "filter by commit SHA")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum rows (default 100)")
	cmd.Flags().StringVar(&output, "output", "text", "output format: text or json")
	return cmd
}
