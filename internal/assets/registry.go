package assets

// Registry lists embedded schemas available at runtime.
// Update this when adding/removing curated assets.

type AssetInfo struct {
	Name    string // lookup key, e.g. catalog-v1.0.0
	Family  string // e.g., jsonschema
	Version string // e.g., draft-07
	Path    string // embed path
}

const (
	CatalogSchema = "catalog-v1.0.0"
	ConfigSchema  = "starcat-config-v1.0.0"
)

var Registry = []AssetInfo{
	{
		Name:    CatalogSchema,
		Family:  "jsonschema",
		Version: "draft-07",
		Path:    "embedded_schemas/catalog-v1.0.0.yaml",
	},
	{
		Name:    ConfigSchema,
		Family:  "jsonschema",
		Version: "draft-07",
		Path:    "embedded_schemas/starcat-config-v1.0.0.yaml",
	},
}
