package devices

import (
	"sort"
	"strings"

	"github.com/omerch/updatescout/internal/models"
)

// brandShortcuts maps a manufacturer key to the abbreviation people prepend
// to model numbers in forum posts ("S24" for "Galaxy S24", "OP13" for
// "OnePlus 13"). Held as data so new brands are a table entry, not code.
var brandShortcuts = map[string]string{
	"samsung": "s",
	"oneplus": "op",
	"google":  "pixel",
	"xiaomi":  "mi",
}

// descriptorSuffixes are the trailing model descriptors that people write
// both spaced and concatenated ("S24 Ultra" and "S24Ultra").
var descriptorSuffixes = []string{"ultra", "pro", "plus", "max", "note", "lite", "fe"}

// brandDisplayNames maps manufacturer keys to the brand word used in
// brand-prefixed variants.
var brandDisplayNames = map[string]string{
	"samsung": "Samsung",
	"google":  "Google",
	"xiaomi":  "Xiaomi",
	"oneplus": "OnePlus",
	"apple":   "Apple",
}

// Expander generates the textual variants of a device name needed to match
// how forum and social posts actually write it. Pure computation: the same
// DeviceRecord always yields the same set.
type Expander struct{}

// NewExpander creates a variant expander.
func NewExpander() *Expander {
	return &Expander{}
}

// Expand returns the variant set for a device. The set is never empty and
// always contains the canonical full name. Output is sorted for determinism.
func (e *Expander) Expand(device models.DeviceRecord) []string {
	seen := make(map[string]struct{})
	add := func(v string) {
		v = strings.TrimSpace(v)
		if v != "" {
			seen[strings.ToLower(v)] = struct{}{}
		}
	}

	add(device.FullName)
	add(device.DeviceKey)

	if brand, ok := brandDisplayNames[device.ManufacturerKey]; ok {
		add(brand + " " + device.FullName)
	}

	if device.IsTablet {
		add(device.FullName + " tablet")
		if brand, ok := brandDisplayNames[device.ManufacturerKey]; ok {
			add(brand + " tablet " + device.DeviceKey)
		}
	}

	e.addSuffixForms(add, device)
	e.addShortcutForms(add, device)

	variants := make([]string, 0, len(seen))
	for v := range seen {
		variants = append(variants, v)
	}
	sort.Strings(variants)
	return variants
}

// addSuffixForms emits spaced and concatenated forms for names carrying a
// descriptor suffix: "galaxy s24 ultra" also yields "s24ultra" and "s24 ultra".
func (e *Expander) addSuffixForms(add func(string), device models.DeviceRecord) {
	tokens := splitTokens(strings.ToLower(device.FullName))
	if len(tokens) < 2 {
		return
	}
	last := tokens[len(tokens)-1]
	for _, suffix := range descriptorSuffixes {
		if last != suffix {
			continue
		}
		base := strings.Join(tokens[:len(tokens)-1], " ")
		baseTail := tokens[len(tokens)-2]
		add(base + " " + suffix)
		add(baseTail + " " + suffix)
		add(baseTail + suffix)
		return
	}
}

// addShortcutForms emits brand-abbreviated forms like "s24" or "op13" built
// from the model number tokens of the device key.
func (e *Expander) addShortcutForms(add func(string), device models.DeviceRecord) {
	shortcut, ok := brandShortcuts[device.ManufacturerKey]
	if !ok {
		return
	}
	for _, token := range splitTokens(strings.ToLower(device.DeviceKey)) {
		if !containsDigit(token) {
			continue
		}
		if strings.HasPrefix(token, shortcut) {
			// Already abbreviated ("s24" in "s24 ultra").
			add(token)
		} else {
			add(shortcut + token)
		}
		return
	}
}

func containsDigit(s string) bool {
	for _, r := range s {
		if r >= '0' && r <= '9' {
			return true
		}
	}
	return false
}
