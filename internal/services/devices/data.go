package devices

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/omerch/updatescout/internal/models"
)

//go:embed catalog.yaml
var catalogYAML []byte

// CatalogData is the immutable device reference data loaded at startup.
// Manufacturer and device ordering is preserved from the data file because
// resolution is first-match-wins.
type CatalogData struct {
	Manufacturers []models.ManufacturerInfo `yaml:"manufacturers"`
	Devices       []models.DeviceRecord     `yaml:"devices"`
}

// LoadCatalogData parses the embedded catalog file.
func LoadCatalogData() (*CatalogData, error) {
	return parseCatalogData(catalogYAML)
}

func parseCatalogData(raw []byte) (*CatalogData, error) {
	var data CatalogData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse device catalog: %w", err)
	}
	if len(data.Manufacturers) == 0 {
		return nil, fmt.Errorf("device catalog contains no manufacturers")
	}

	known := make(map[string]bool, len(data.Manufacturers))
	for _, m := range data.Manufacturers {
		if m.Key == "" {
			return nil, fmt.Errorf("manufacturer with empty key in catalog")
		}
		known[m.Key] = true
	}
	for _, d := range data.Devices {
		if !known[d.ManufacturerKey] {
			return nil, fmt.Errorf("device %q references unknown manufacturer %q", d.DeviceKey, d.ManufacturerKey)
		}
	}

	return &data, nil
}
