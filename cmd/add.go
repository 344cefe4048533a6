package cmd

import (
	"fmt"

	"github.com/fulmenhq/starcat/internal/ops"
	"github.com/fulmenhq/starcat/pkg/catalog"
	"github.com/fulmenhq/starcat/pkg/logger"
	"github.com/fulmenhq/starcat/pkg/reconcile"
	"github.com/spf13/cobra"
)

func newAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an object to the catalog",
		Long: `Add one object to the catalog, optionally downloading its texture first.

The entry is validated before anything is fetched or written. When --url is
given the image is downloaded, converted to the canonical size for its render
mode (2048x1024, or 2048x2048 for flat and billboard) and stored in the texture
directory under --texture. If the download fails the catalog is left untouched
unless --allow-missing-texture is set.

An object whose name is already in the catalog is rejected unless --replace is
given, in which case the old entry is removed and the new one appended.`,
		Example: `  starcat add --name Europa --size 3122 --color "#EFEFEF" --texture europa.jpg \
      --type moon --parent Jupiter --url https://example.org/europa.png`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{groupAnnotation: string(ops.GroupCatalog)},
		RunE:        runAdd,
	}

	cmd.Flags().String("name", "", "Object name (unique within the catalog)")
	cmd.Flags().Float64("size", 0, "Object size (display units, must be positive)")
	cmd.Flags().String("color", "", "Color as an integer, #RRGGBB or 0xRRGGBB")
	cmd.Flags().String("texture", "", "Texture filename inside the texture directory")
	cmd.Flags().String("type", "", "Object type (planet, moon, nebula, galaxy, star_cluster, star)")
	cmd.Flags().String("render-mode", "", "Render mode (sphere, flat, billboard)")
	cmd.Flags().String("parent", "", "Parent object name (moons)")
	cmd.Flags().Bool("emissive", false, "Object emits its own light")
	cmd.Flags().String("url", "", "Download the texture from this URL")
	cmd.Flags().Bool("overwrite-texture", false, "Replace an existing texture file when downloading")
	cmd.Flags().Bool("replace", false, "Replace an existing object with the same name")
	cmd.Flags().Bool("allow-missing-texture", false, "Add the object even if the texture download fails")

	for _, name := range []string{"name", "size", "color", "texture"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runAdd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	fields := addFields(cmd)

	sourceURL, _ := cmd.Flags().GetString("url")
	overwrite, _ := cmd.Flags().GetBool("overwrite-texture")
	replace, _ := cmd.Flags().GetBool("replace")
	allowMissing, _ := cmd.Flags().GetBool("allow-missing-texture")

	conflict := catalog.ConflictAbort
	if replace {
		conflict = catalog.ConflictReplace
	}

	res, err := newEngine(cfg).AddOne(cmd.Context(), reconcile.AddRequest{
		Fields:              fields,
		SourceURL:           sourceURL,
		Overwrite:           overwrite,
		Conflict:            conflict,
		AllowMissingTexture: allowMissing,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "⚠ %s\n", w.String())
	}
	if res.FetchErr != nil {
		fmt.Fprintf(out, "⚠ Texture not downloaded: %v\n", res.FetchErr)
	}
	fmt.Fprintf(out, "%s %s (catalog now has %d objects)\n", outcomeVerb(res.Outcome), res.Entry.Name, res.Total)
	return nil
}

// addFields collects the entry fields from flags. Optional fields are only
// present when their flag was given, so the validator sees exactly what the
// user asked for.
func addFields(cmd *cobra.Command) map[string]any {
	flags := cmd.Flags()
	name, _ := flags.GetString("name")
	size, _ := flags.GetFloat64("size")
	colorStr, _ := flags.GetString("color")
	textureName, _ := flags.GetString("texture")

	var color any = colorStr
	if n, err := catalog.ParseColor(colorStr); err == nil {
		color = n
	}

	fields := map[string]any{
		catalog.FieldName:    name,
		catalog.FieldSize:    size,
		catalog.FieldColor:   color,
		catalog.FieldTexture: textureName,
	}
	optional := map[string]string{
		"type":        catalog.FieldType,
		"render-mode": catalog.FieldRenderMode,
		"parent":      catalog.FieldParent,
	}
	for flag, field := range optional {
		if flags.Changed(flag) {
			v, _ := flags.GetString(flag)
			fields[field] = v
		}
	}
	if flags.Changed("emissive") {
		v, _ := flags.GetBool("emissive")
		fields[catalog.FieldEmissive] = v
	}
	emissive, _ := flags.GetBool("emissive")
	logger.Debug("Collected entry fields", logger.Int("count", len(fields)),
		logger.Float64("size", size), logger.Bool("emissive", emissive))
	return fields
}

func outcomeVerb(o catalog.UpsertOutcome) string {
	switch o {
	case catalog.Replaced:
		return "Replaced"
	case catalog.Skipped:
		return "Kept existing"
	default:
		return "Added"
	}
}
