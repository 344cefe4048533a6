package cmd

import (
	"fmt"

	"github.com/fulmenhq/starcat/internal/ops"
	"github.com/spf13/cobra"
)

func newPruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Remove entries whose texture file is missing",
		Long: `Drop every catalog entry whose texture is not present in the texture
directory and rewrite the catalog. The order of the remaining entries is kept.
Use --dry-run to list what would be removed without writing.`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{groupAnnotation: string(ops.GroupCatalog)},
		RunE:        runPrune,
	}
	cmd.Flags().Bool("dry-run", false, "List entries that would be removed without changing the catalog")
	return cmd
}

func runPrune(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	res, err := newEngine(cfg).Prune(cmd.Context(), dryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, name := range res.Removed {
		fmt.Fprintf(out, "  - %s\n", name)
	}
	if dryRun {
		fmt.Fprintf(out, "Would remove %d objects, keeping %d\n", len(res.Removed), res.Kept)
		return nil
	}
	fmt.Fprintf(out, "Removed %d objects, kept %d\n", len(res.Removed), res.Kept)
	return nil
}
