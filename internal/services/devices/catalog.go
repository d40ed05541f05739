package devices

import (
	"strings"
	"time"
	"unicode"

	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/models"
)

// Catalog resolves free-text manufacturer/device mentions to canonical
// records. It is read-only after construction and safe for concurrent use
// without synchronization.
type Catalog struct {
	data     *CatalogData
	byMaker  map[string][]models.DeviceRecord // preserves catalog order per manufacturer
	expander *Expander
	logger   arbor.ILogger
}

// NewCatalog builds a catalog over immutable reference data.
func NewCatalog(data *CatalogData, logger arbor.ILogger) *Catalog {
	byMaker := make(map[string][]models.DeviceRecord)
	for _, d := range data.Devices {
		byMaker[d.ManufacturerKey] = append(byMaker[d.ManufacturerKey], d)
	}
	return &Catalog{
		data:     data,
		byMaker:  byMaker,
		expander: NewExpander(),
		logger:   logger,
	}
}

// Expander returns the variant expander bound to this catalog.
func (c *Catalog) Expander() *Expander {
	return c.expander
}

// ResolveManufacturer matches text against each manufacturer's alias list by
// substring containment. First match wins; alias ordering is the tie-break.
// Returns nil when nothing matches; callers fall back to synthesis.
func (c *Catalog) ResolveManufacturer(text string) *models.ManufacturerInfo {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return nil
	}

	for i := range c.data.Manufacturers {
		m := &c.data.Manufacturers[i]
		for _, alias := range m.Aliases {
			if strings.Contains(normalized, alias) {
				return m
			}
		}
	}
	return nil
}

// ResolveDevice finds the catalog device the normalized text refers to.
//
// Pass 1 is exact substring containment of each device key in the text.
// When both a tablet and a non-tablet share a matching key, the tablet-intent
// flag derived from the query text wins; otherwise first catalog-order match.
// Pass 2 is a token-level fuzzy match: every token of the device key must be
// a substring of some token of the input, order-independent.
//
// Returns nil when nothing matches; callers fall back to synthesis.
func (c *Catalog) ResolveDevice(manufacturer *models.ManufacturerInfo, text string) *models.DeviceRecord {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" || manufacturer == nil {
		return nil
	}

	candidates := c.byMaker[manufacturer.Key]
	wantTablet := hasTabletIntent(normalized)

	var first *models.DeviceRecord
	for i := range candidates {
		d := &candidates[i]
		if !strings.Contains(normalized, d.DeviceKey) {
			continue
		}
		if d.IsTablet == wantTablet {
			return d
		}
		if first == nil {
			first = d
		}
	}
	if first != nil {
		return first
	}

	// Fuzzy pass: all key tokens must appear somewhere in the input tokens.
	inputTokens := splitTokens(normalized)
	for i := range candidates {
		d := &candidates[i]
		if matchesAllTokens(splitTokens(d.DeviceKey), inputTokens) {
			if d.IsTablet == wantTablet {
				return d
			}
			if first == nil {
				first = d
			}
		}
	}
	return first
}

// SynthesizeGenericManufacturer builds a usable manufacturer record for
// free text the catalog does not know. Never returns nil for non-empty text.
func (c *Catalog) SynthesizeGenericManufacturer(text string) *models.ManufacturerInfo {
	key := strings.ToLower(strings.TrimSpace(text))
	if key == "" {
		key = "unknown"
	}
	c.logger.Debug().Str("manufacturer", key).Msg("Synthesizing generic manufacturer")
	return &models.ManufacturerInfo{
		Key:     key,
		Name:    titleCase(key),
		Aliases: []string{key},
	}
}

// SynthesizeGenericDevice builds a usable device record for free text the
// catalog does not know. The pipeline must always have a DeviceRecord to
// expand and search on, so this never returns nil for non-empty text.
func (c *Catalog) SynthesizeGenericDevice(manufacturer *models.ManufacturerInfo, text string) *models.DeviceRecord {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	key := strings.ToLower(trimmed)
	manufacturerKey := "unknown"
	if manufacturer != nil {
		manufacturerKey = manufacturer.Key
	}
	c.logger.Debug().
		Str("manufacturer", manufacturerKey).
		Str("device", key).
		Msg("Synthesizing generic device")
	return &models.DeviceRecord{
		ManufacturerKey: manufacturerKey,
		DeviceKey:       key,
		FullName:        trimmed,
		Series:          "Unknown",
		ReleaseYear:     time.Now().Year(),
		IsTablet:        hasTabletIntent(key),
		Codename:        "generic",
	}
}

// Manufacturers returns the catalog's manufacturer list in stable order.
func (c *Catalog) Manufacturers() []models.ManufacturerInfo {
	return c.data.Manufacturers
}

// hasTabletIntent reports whether the query text carries tablet tokens.
func hasTabletIntent(text string) bool {
	for _, token := range splitTokens(text) {
		if token == "tab" || token == "tablet" || token == "pad" || token == "ipad" {
			return true
		}
	}
	return false
}

// splitTokens splits on whitespace, hyphen, and underscore.
func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == '_'
	})
}

// matchesAllTokens reports whether every key token is a substring of at
// least one input token (order-independent, all tokens required).
func matchesAllTokens(keyTokens, inputTokens []string) bool {
	if len(keyTokens) == 0 {
		return false
	}
	for _, kt := range keyTokens {
		found := false
		for _, it := range inputTokens {
			if strings.Contains(it, kt) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}
