package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/internal/contract"
	"github.com/evalgate/evalgate/internal/diff"
)

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare contracts or result sets",
	}
	cmd.AddCommand(newDiffContractsCmd(), newDiffResultsCmd())
	return cmd
}

func newDiffContractsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "contracts <previous> <current>",
		Short: "Show what changed between two contract files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("--output must be text or json, got %q", output)
			}

			previous, err := contract.Load(args[0])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[0], err)
			}
			current, err := contract.Load(args[1])
			if err != nil {
				return fmt.Errorf("load %s: %w", args[1], err)
			}

			d := diff.Contracts(previous.Contract, current.Contract)
			stdout := cmd.OutOrStdout()
			if output == "json" {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(d)
			}
			renderContractDiff(stdout, d)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "text", "output format: text or json")
	return cmd
}

func newDiffResultsCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "results <previous> <current>",
		Short: "Classify metric movement between two result sets",
		Long: `Compare two normalized result files and report every metric as new,
improved, or regressed. Direction is inferred from the metric name:
error/latency/cost style metrics improve downward, everything else
upward.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("--output must be text or json, got %q", output)
			}

			previous, err := loadResultSet(args[0])
			if err != nil {
				return err
			}
			current, err := loadResultSet(args[1])
			if err != nil {
				return err
			}

			changes := diff.Results(previous, current)
			stdout := cmd.OutOrStdout()
			if output == "json" {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(changes)
			}
			renderResultsDiff(stdout, changes)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "text", "output format: text or json")
	return cmd
}
