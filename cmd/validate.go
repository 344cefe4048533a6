package cmd

import (
	"bytes"
	"fmt"

	"github.com/fulmenhq/starcat/internal/ops"
	"github.com/fulmenhq/starcat/pkg/exitcode"
	"github.com/fulmenhq/starcat/pkg/logger"
	"github.com/fulmenhq/starcat/pkg/reconcile"
	"github.com/fulmenhq/starcat/pkg/safeio"
	"github.com/spf13/cobra"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check every catalog entry and its texture",
		Long: `Validate the whole catalog: required fields, field types and ranges, unique
names, and that every referenced texture exists in the texture directory.
Every problem is reported, not just the first. Large textures, unusual colors
and a parent on a non-moon are warnings and do not fail validation.

Exits 0 when there are no issues and 3 otherwise.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{groupAnnotation: string(ops.GroupCatalog)},
		RunE:        runValidate,
	}
	cmd.Flags().String("format", "text", "Output format (text, json, markdown)")
	cmd.Flags().StringP("output", "o", "", "Output file (default: stdout)")
	cmd.Flags().Bool("strict-schema", false, "Also check the raw document against the catalog JSON Schema")
	return cmd
}

func runValidate(cmd *cobra.Command, _ []string) error {
	formatStr, _ := cmd.Flags().GetString("format")
	format, err := reconcile.ParseOutputFormat(formatStr)
	if err != nil {
		return withExitCode(exitcode.ConfigError, err)
	}
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	strict, _ := cmd.Flags().GetBool("strict-schema")
	output, _ := cmd.Flags().GetString("output")
	noColor, _ := cmd.Flags().GetBool("no-color")

	report, err := newEngine(cfg).Validate(cmd.Context(), strict)
	if err != nil {
		return err
	}

	formatter := reconcile.NewFormatter(format)
	formatter.SetNoColor(noColor || output != "")

	if output != "" {
		var buf bytes.Buffer
		if err := formatter.Write(&buf, report); err != nil {
			return err
		}
		path, err := safeio.CleanUserPath(output)
		if err != nil {
			return withExitCode(exitcode.FileSystemError, err)
		}
		if err := safeio.WriteFileAtomic(path, buf.Bytes()); err != nil {
			return withExitCode(exitcode.FileSystemError, fmt.Errorf("failed to write report: %w", err))
		}
		logger.Info("Validation report written", logger.String("path", path))
	} else if err := formatter.Write(cmd.OutOrStdout(), report); err != nil {
		return err
	}

	if !report.OK {
		return withExitCode(exitcode.ValidationError,
			fmt.Errorf("validation failed: %d issue(s) found", report.Summary.Issues))
	}
	return nil
}
