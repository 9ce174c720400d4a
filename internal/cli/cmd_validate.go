package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/evalgate/evalgate/internal/config"
	"github.com/evalgate/evalgate/internal/contract"
)

// validationReport is the JSON shape of a validate run.
type validationReport struct {
	Path   string `json:"path"`
	Digest string `json:"digest,omitempty"`
	contract.Result
}

func newValidateCmd() *cobra.Command {
	var strict bool
	var output string

	cmd := &cobra.Command{
		Use:   "validate <contract>",
		Short: "Validate a contract without evaluating anything",
		Long: `Check a contract against the schema and the semantic lint rules.
Warnings do not fail validation unless --strict (or strict: true in
evalgate.yaml) promotes them to errors. Exits 3 when the contract is
invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "text" && output != "json" {
				return fmt.Errorf("--output must be text or json, got %q", output)
			}

			cfg, err := config.LoadOptional(configPath)
			if err != nil {
				return err
			}
			strictMode := strict || cfg.Strict

			path := args[0]
			stdout := cmd.OutOrStdout()

			loaded, err := contract.Load(path)
			if err != nil {
				var schemaErr *contract.SchemaError
				if errors.As(err, &schemaErr) {
					res := contract.Result{Errors: schemaErr.Issues}
					if err := emitValidation(stdout, output, path, "", res); err != nil {
						return err
					}
					return fmt.Errorf("contract %s failed schema validation", path)
				}
				return err
			}

			res := contract.Validate(loaded.Contract)
			if strictMode && len(res.Warnings) > 0 {
				res.Errors = append(res.Errors, res.Warnings...)
				res.Warnings = nil
				res.Valid = false
			}

			if err := emitValidation(stdout, output, path, loaded.Digest, res); err != nil {
				return err
			}
			if !res.Valid {
				return fmt.Errorf("contract %s is invalid", path)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	cmd.Flags().StringVar(&output, "output", "text", "output format: text or json")

	return cmd
}

func emitValidation(w io.Writer, output, path, digest string, res contract.Result) error {
	if output == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(validationReport{Path: path, Digest: digest, Result: res})
	}
	renderValidation(w, path, digest, res)
	return nil
}
