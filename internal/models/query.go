package models

// ParsedQuery is the result of extracting a (manufacturer, device, version)
// triple from a free-text user message. All fields are raw text and may be
// empty; Confidence reflects how specific the matching pattern was.
//
// Confidence tiers:
//   - structured pattern match: >= 0.8
//   - free-text scan, device and version both found: ~0.7
//   - free-text scan, only one found: <= 0.3
type ParsedQuery struct {
	ManufacturerText string
	DeviceText       string
	VersionText      string
	Confidence       float64
}

// HasDevice reports whether any device text was extracted.
func (q ParsedQuery) HasDevice() bool {
	return q.DeviceText != ""
}

// HasVersion reports whether any OS version text was extracted.
func (q ParsedQuery) HasVersion() bool {
	return q.VersionText != ""
}
