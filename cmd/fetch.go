package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/fulmenhq/starcat/internal/ops"
	"github.com/fulmenhq/starcat/pkg/texture"
	"github.com/spf13/cobra"
)

func newFetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch <url> <filename>",
		Short: "Download and normalize a texture",
		Long: `Download an image and store it in the texture directory at the canonical
size for the given render mode. Transparent pixels are flattened onto black
when the target format has no alpha channel. An existing file is kept unless
--overwrite is given. The catalog is not modified.`,
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{groupAnnotation: string(ops.GroupAssets)},
		RunE:        runFetch,
	}
	cmd.Flags().String("render-mode", "sphere", "Render mode deciding the target size (sphere, flat, billboard)")
	cmd.Flags().Bool("overwrite", false, "Replace the file if it already exists")
	return cmd
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	renderMode, _ := cmd.Flags().GetString("render-mode")
	overwrite, _ := cmd.Flags().GetBool("overwrite")

	res, err := newPipeline(cfg).FetchAndNormalize(cmd.Context(), args[0], args[1], renderMode, overwrite)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if res.Status == texture.StatusExists {
		fmt.Fprintf(out, "%s already exists, kept (use --overwrite to replace)\n", res.Path)
		return nil
	}
	fmt.Fprintf(out, "Saved %s (%dx%d, %s)\n", res.Path, res.Final.X, res.Final.Y, humanize.Bytes(uint64(res.Bytes)))
	return nil
}
