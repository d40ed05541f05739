package models

// ManufacturerInfo describes a device maker known to the catalog.
// Alias ordering is significant: manufacturer resolution is first-match-wins,
// so the alias list doubles as the tie-break order.
type ManufacturerInfo struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Aliases     []string `yaml:"aliases"`
	SecurityURL string   `yaml:"security_url"`
}

// DeviceRecord is an immutable reference entity for a known (or synthesized)
// device model. Records are loaded once at startup and never mutated.
type DeviceRecord struct {
	ManufacturerKey string `yaml:"manufacturer_key"`
	DeviceKey       string `yaml:"device_key"`
	FullName        string `yaml:"full_name"`
	Series          string `yaml:"series"`
	ReleaseYear     int    `yaml:"release_year"`
	IsTablet        bool   `yaml:"is_tablet"`
	Codename        string `yaml:"codename"`
}
