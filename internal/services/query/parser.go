package query

import (
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/omerch/updatescout/internal/models"
)

// versionPattern matches the OS-version phrasings users actually write.
const versionPattern = `(?:android|one\s?ui|ios|ipados|miui|hyperos|oxygenos|coloros)\s?\d+(?:\.\d+)?`

// familyManufacturers maps device-family keywords to the manufacturer text
// inferred for them during free-text parsing.
var familyManufacturers = []struct {
	keyword      string
	manufacturer string
}{
	{"galaxy", "samsung"},
	{"samsung", "samsung"},
	{"pixel", "google"},
	{"iphone", "apple"},
	{"ipad", "apple"},
	{"redmi", "xiaomi"},
	{"poco", "xiaomi"},
	{"xiaomi", "xiaomi"},
	{"oneplus", "oneplus"},
}

// messagePattern is one structured phrasing of an update question. The
// device and version groups must both be capture groups 1 and 2.
type messagePattern struct {
	re         *regexp.Regexp
	confidence float64
}

// Ordered: more specific phrasings first; the first match wins.
var messagePatterns = []messagePattern{
	// "should I update (my) X to Y"
	{regexp.MustCompile(`(?i)should\s+i\s+(?:update|upgrade)\s+(?:my\s+)?(.+?)\s+to\s+(` + versionPattern + `)`), 0.9},
	// "is it safe/worth updating X to Y"
	{regexp.MustCompile(`(?i)is\s+it\s+(?:safe|worth)\s+(?:to\s+update|updating|upgrading)\s+(?:my\s+)?(.+?)\s+to\s+(` + versionPattern + `)`), 0.85},
	// "issues/problems in/with X update Y"
	{regexp.MustCompile(`(?i)(?:issues?|problems?|bugs?)\s+(?:in|with|on|after)\s+(?:the\s+)?(.+?)\s+(?:update\s+)?(` + versionPattern + `)`), 0.85},
	// "is X Y stable" / "X Y stable?"
	{regexp.MustCompile(`(?i)(?:is\s+)?(.+?)\s+(` + versionPattern + `)\s+(?:stable|safe|ok|good)`), 0.8},
	// bare "X Y" where Y starts with an OS-version token
	{regexp.MustCompile(`(?i)^(.+?)\s+(` + versionPattern + `)\s*\??$`), 0.8},
}

var freeTextVersionRe = regexp.MustCompile(`(?i)` + versionPattern)

// familyDeviceRe captures a device-family keyword plus up to two trailing
// model tokens ("galaxy s24 ultra", "pixel 7").
var familyDeviceRe = regexp.MustCompile(`(?i)\b(galaxy|pixel|iphone|ipad|redmi|poco|xiaomi|oneplus)((?:\s+[a-z0-9+]+){0,2})`)

// Parser extracts a (manufacturer, device, version) triple from free text.
// Pure function of its input; no state, safe for concurrent use.
type Parser struct {
	logger arbor.ILogger
}

// NewParser creates a query parser.
func NewParser(logger arbor.ILogger) *Parser {
	return &Parser{logger: logger}
}

// Parse applies the ordered structured patterns, then falls back to
// independent free-text scanning for device and version keywords.
func (p *Parser) Parse(messageText string) models.ParsedQuery {
	text := strings.TrimSpace(messageText)
	if text == "" {
		return models.ParsedQuery{}
	}

	for _, pattern := range messagePatterns {
		match := pattern.re.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		deviceText := cleanDeviceText(match[1])
		if deviceText == "" {
			continue
		}
		parsed := models.ParsedQuery{
			ManufacturerText: inferManufacturer(deviceText),
			DeviceText:       deviceText,
			VersionText:      strings.TrimSpace(match[2]),
			Confidence:       pattern.confidence,
		}
		p.logger.Debug().
			Str("device", parsed.DeviceText).
			Str("version", parsed.VersionText).
			Float64("confidence", parsed.Confidence).
			Msg("Structured pattern matched")
		return parsed
	}

	return p.parseFreeText(text)
}

// parseFreeText scans for device-family and version keywords independently.
// Confidence is 0.7 when both are present, 0.3 when only one is.
func (p *Parser) parseFreeText(text string) models.ParsedQuery {
	var parsed models.ParsedQuery

	if match := familyDeviceRe.FindStringSubmatch(text); match != nil {
		parsed.DeviceText = cleanDeviceText(match[1] + match[2])
		parsed.ManufacturerText = inferManufacturer(parsed.DeviceText)
	}
	if version := freeTextVersionRe.FindString(text); version != "" {
		parsed.VersionText = strings.TrimSpace(version)
	}

	switch {
	case parsed.HasDevice() && parsed.HasVersion():
		parsed.Confidence = 0.7
	case parsed.HasDevice() || parsed.HasVersion():
		parsed.Confidence = 0.3
	default:
		parsed.Confidence = 0
	}

	p.logger.Debug().
		Str("device", parsed.DeviceText).
		Str("version", parsed.VersionText).
		Float64("confidence", parsed.Confidence).
		Msg("Free-text fallback parse")
	return parsed
}

// inferManufacturer maps the first recognized family keyword in the device
// text to a manufacturer mention. Empty when no family keyword is present.
func inferManufacturer(deviceText string) string {
	lower := strings.ToLower(deviceText)
	for _, fm := range familyManufacturers {
		if strings.Contains(lower, fm.keyword) {
			return fm.manufacturer
		}
	}
	return ""
}

// cleanDeviceText strips filler words and punctuation from a captured
// device mention.
func cleanDeviceText(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "?!.,")
	for _, prefix := range []string{"my ", "the ", "a "} {
		lower := strings.ToLower(s)
		if strings.HasPrefix(lower, prefix) {
			s = s[len(prefix):]
		}
	}
	return strings.TrimSpace(s)
}
