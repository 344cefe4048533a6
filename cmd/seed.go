package cmd

import (
	"fmt"

	"github.com/fulmenhq/starcat/internal/ops"
	"github.com/fulmenhq/starcat/pkg/ascii"
	"github.com/fulmenhq/starcat/pkg/exitcode"
	"github.com/fulmenhq/starcat/pkg/reconcile"
	"github.com/spf13/cobra"
)

func newSeedCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Add missing objects from a seed list",
		Long: `Add every object from a seed list whose name is not yet in the catalog,
downloading textures that are not already present. Items that fail are
reported and skipped; the rest are still added. The catalog is created if it
does not exist.

Without --file (or seed.file in the config) the built-in list is used. Seed
files may be YAML, JSON or TOML with a top-level "seeds" array.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{groupAnnotation: string(ops.GroupCatalog)},
		RunE:        runSeed,
	}
	cmd.Flags().String("file", "", "Seed list file (.yaml, .json or .toml)")
	return cmd
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	file, _ := cmd.Flags().GetString("file")
	if file == "" {
		file = cfg.Seed.File
	}
	var items []reconcile.SeedItem
	if file != "" {
		items, err = reconcile.LoadSeedFile(file)
	} else {
		items, err = reconcile.DefaultSeeds()
	}
	if err != nil {
		return withExitCode(exitcode.ConfigError, err)
	}

	report, err := newEngine(cfg).Seed(cmd.Context(), items)
	if report != nil {
		printSeedReport(cmd, report)
	}
	if err != nil {
		return err
	}
	if report.Failed > 0 {
		return withExitCode(exitcode.PartialFailure,
			fmt.Errorf("%d of %d seed items failed", report.Failed, len(items)))
	}
	return nil
}

func printSeedReport(cmd *cobra.Command, report *reconcile.SeedReport) {
	out := cmd.OutOrStdout()
	rows := make([][]string, 0, len(report.Items))
	for _, item := range report.Items {
		rows = append(rows, []string{item.Name, string(item.Status), item.Error})
	}
	fmt.Fprint(out, ascii.Table("  ", rows))
	fmt.Fprintf(out, "\nAdded %d, skipped %d, failed %d. Catalog has %d objects.\n",
		report.Added, report.Skipped, report.Failed, report.Total)
}
