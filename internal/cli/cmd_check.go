package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/contract"
	"github.com/evalgate/evalgate/internal/engine"
	"github.com/evalgate/evalgate/internal/ledger"
	"github.com/evalgate/evalgate/internal/record"
	"github.com/evalgate/evalgate/pkg/types"
)

func newCheckCmd() *cobra.Command {
	var (
		contractPath string
		resultPaths  []string
		baselinePath string
		signalsPath  string
		environment  string
		commit       string
		evidence     []string
		output       string
		recordPath   string
		store        bool
		adapterName  string
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Evaluate eval results against a contract",
		Long: `Evaluate one release's eval exports against a contract and decide
PASS, BLOCK, or REQUIRES_APPROVAL.

Results files are normalized through the contract's source configs when
present; JSON exports without one are auto-detected by the adapter
registry (see "evalgate adapters").

Exit codes: 0 PASS, 1 BLOCK, 2 REQUIRES_APPROVAL, 3 any error.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("--output must be text or json, got %q", output)
			}

			cfg, err := config.LoadOptional(configPath)
			if err != nil {
				return err
			}

			loaded, err := contract.Load(contractPath)
			if err != nil {
				return err
			}

			results := make([]types.NormalizedEvalResult, 0, len(resultPaths))
			for _, path := range resultPaths {
				res, err := loadResults(path, adapterName, loaded.Contract.Sources)
				if err != nil {
					return fmt.Errorf("parse %s: %w", path, err)
				}
				logger.Debug("parsed eval export",
					zap.String("path", path),
					zap.String("eval", res.EvalName),
					zap.Int("metrics", len(res.Metrics)))
				results = append(results, res)
			}

			var baselines map[string]types.BaselineData
			if baselinePath != "" {
				if baselines, err = loadBaselines(baselinePath); err != nil {
					return err
				}
			}

			var signals []types.Signal
			if signalsPath != "" {
				if signals, err = loadSignals(signalsPath); err != nil {
					return err
				}
			}

			env := environment
			if env == "" {
				env = cfg.DefaultEnvironment
			}

			decision, err := engine.Evaluate(engine.Input{
				Contract:    loaded.Contract,
				Results:     results,
				Baselines:   baselines,
				Signals:     signals,
				Environment: env,
			})
			if err != nil {
				return err
			}

			logger.Info("contract evaluated",
				zap.String("contract", decision.ContractName),
				zap.String("decision", string(decision.Status)),
				zap.Int("violations", len(decision.Violations)))

			if recordPath != "" || store {
				rec, err := record.Build(record.BuildInput{
					Decision:    decision,
					Contract:    loaded.Contract,
					Environment: env,
					EvalResults: results,
					Signals:     signals,
					Commit:      commit,
					Evidence:    evidence,
				})
				if err != nil {
					return err
				}
				if recordPath != "" {
					if err := writeRecord(recordPath, rec); err != nil {
						return err
					}
				}
				if store {
					if err := persistRecord(cfg, loaded, rec); err != nil {
						return err
					}
					logger.Info("decision record persisted", zap.String("record_id", rec.RecordID))
				}
			}

			stdout := cmd.OutOrStdout()
			if output == "json" {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				if err := enc.Encode(decision); err != nil {
					return err
				}
			} else {
				renderDecision(stdout, resolveEnvironment(env, loaded.Contract), decision)
			}

			return decisionExit(decision.Status)
		},
	}

	cmd.Flags().StringVarP(&contractPath, "contract", "c", "", "contract file (required)")
	cmd.Flags().StringArrayVarP(&resultPaths, "results", "r", nil, "eval export file (repeatable, required)")
	cmd.Flags().StringVar(&baselinePath, "baseline", "", "baseline metrics file")
	cmd.Flags().StringVar(&signalsPath, "signals", "", "release signals file")
	cmd.Flags().StringVar(&environment, "env", "", "target environment")
	cmd.Flags().StringVar(&commit, "commit", "", "commit SHA under evaluation")
	cmd.Flags().StringArrayVar(&evidence, "evidence", nil, "evidence reference (repeatable)")
	cmd.Flags().StringVar(&output, "output", "text", "output format: text or json")
	cmd.Flags().StringVar(&recordPath, "record", "", "write a decision record to this path")
	cmd.Flags().BoolVar(&store, "store", false, "persist the decision record to the configured ledger")
	cmd.Flags().StringVar(&adapterName, "adapter", "", "force a specific eval-tool adapter for JSON exports")
	_ = cmd.MarkFlagRequired("contract")
	_ = cmd.MarkFlagRequired("results")

	return cmd
}

// decisionExit converts a non-passing decision into its exit code. The
// report has already been rendered, so the error carries no message.
func decisionExit(status types.DecisionStatus) error {
	switch status {
	case types.StatusBlock:
		return &exitError{code: 1}
	case types.StatusRequiresApproval:
		return &exitError{code: 2}
	default:
		return nil
	}
}

func writeRecord(path string, rec types.DecisionRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// persistRecord writes the decision record and the contract version it
// was checked against in one transaction. The contract version is keyed
// by the record's policy hash so the exact contract can be recovered
// from any stored record.
func persistRecord(cfg config.Config, loaded *contract.Loaded, rec types.DecisionRecord) error {
	s, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()

	row, err := ledger.NewRecord(rec)
	if err != nil {
		return err
	}
	return s.WithTx(func(tx ledger.Tx) error {
		if err := tx.PutContractVersion(ledger.ContractVersion{
			Digest:       row.PolicyHash,
			Name:         loaded.Contract.Name,
			Environment:  rec.Environment,
			ContractYAML: string(loaded.Raw),
			CreatedAt:    rec.Timestamp,
		}); err != nil {
			return err
		}
		return tx.PutRecord(row)
	})
}
