package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/schemacheck/internal/cli"
	"github.com/aretw0/schemacheck/pkg/domain"
)

var validateCmd = &cobra.Command{
	Use:   "validate --schema SCHEMA DATA",
	Short: "Validate a data document against a schema",
	Long: `Validates DATA (a JSON or YAML file, or - for stdin) against the schema.
Exits 0 when the document is valid and 1 when it is not.

With --watch both files are revalidated whenever they change.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		schemaPath, _ := cmd.Flags().GetString("schema")
		engineName, _ := cmd.Flags().GetString("engine")
		formatName, _ := cmd.Flags().GetString("format")
		watch, _ := cmd.Flags().GetBool("watch")

		format, err := cli.ParseFormat(formatName)
		if err != nil {
			return err
		}
		var engine domain.Engine
		if engineName != "" {
			if engine, err = domain.ParseEngine(engineName); err != nil {
				return err
			}
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		a.buildChecker()
		defer a.Close()

		opts := cli.ValidateOptions{
			DataPath:   args[0],
			SchemaPath: schemaPath,
			Engine:     engine,
			Format:     format,
			Out:        cmd.OutOrStdout(),
			In:         cmd.InOrStdin(),
		}

		if watch {
			sigCtx := cli.NewSignalContext(context.Background())
			defer sigCtx.Cancel()
			if err := cli.RunWatch(sigCtx, a.checker, opts, a.logger); err != nil {
				return err
			}
			if code := sigCtx.ExitCode(); code != 0 {
				return exitError{code: code}
			}
			return nil
		}

		valid, err := cli.RunValidate(cmd.Context(), a.checker, opts)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		if !valid {
			return exitError{code: 1}
		}
		return nil
	},
}

func init() {
	validateCmd.Flags().StringP("schema", "s", "", "Path to the JSON or YAML schema")
	validateCmd.Flags().StringP("engine", "e", "", "Validation engine: subset or draft7 (default from config)")
	validateCmd.Flags().StringP("format", "f", "auto", "Output format: auto, text, json or markdown")
	validateCmd.Flags().BoolP("watch", "w", false, "Revalidate whenever the files change")
	_ = validateCmd.MarkFlagRequired("schema")
	rootCmd.AddCommand(validateCmd)
}
