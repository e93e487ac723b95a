package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/gsdkit/reqgraph/internal/layout"
)

// LoadGeometry reads a TOML geometry preset. Keys match the geometry field
// names (nodeWidth, nodeHeight, hSpacing, vSpacing); omitted keys keep
// their defaults. An empty path returns the defaults untouched.
func LoadGeometry(path string) (layout.Geometry, error) {
	geo := layout.DefaultGeometry()
	if path == "" {
		return geo, nil
	}

	if _, err := toml.DecodeFile(path, &geo); err != nil {
		return layout.DefaultGeometry(), fmt.Errorf("error reading geometry preset %s: %w", path, err)
	}

	if geo.NodeWidth <= 0 || geo.NodeHeight <= 0 || geo.HSpacing < 0 || geo.VSpacing < 0 {
		return layout.DefaultGeometry(), fmt.Errorf("geometry preset %s has non-positive dimensions", path)
	}
	return geo, nil
}
