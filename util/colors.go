// Package util provides the chart helpers shared by the REST and GraphQL layers:
// color themes, CSV parsing, default and sample chart data, dashboard templates
// and request validation.
//
//revive:disable-next-line:var-naming
package util

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultTheme is used whenever a requested theme does not exist.
const DefaultTheme = "Ocean"

// ColorTheme is a named, ordered palette.
type ColorTheme struct {
	Name     string   `json:"name"`
	Colors   []string `json:"colors"`
	Gradient bool     `json:"gradient,omitempty"`
}

// ColorThemes is the fixed palette catalogue. The first entry is the fallback.
var ColorThemes = []ColorTheme{
	{Name: "Ocean", Colors: []string{"#3B82F6", "#1E40AF", "#06B6D4", "#0891B2", "#0E7490", "#164E63"}},
	{Name: "Sunset", Colors: []string{"#F97316", "#EA580C", "#DC2626", "#B91C1C", "#991B1B", "#7F1D1D"}},
	{Name: "Forest", Colors: []string{"#10B981", "#059669", "#047857", "#065F46", "#064E3B", "#022C22"}},
	{Name: "Purple", Colors: []string{"#8B5CF6", "#7C3AED", "#6D28D9", "#5B21B6", "#4C1D95", "#3C1A78"}},
	{Name: "Monochrome", Colors: []string{"#6B7280", "#4B5563", "#374151", "#1F2937", "#111827", "#030712"}},
	{Name: "Rainbow", Colors: []string{"#EF4444", "#F97316", "#EAB308", "#22C55E", "#3B82F6", "#8B5CF6"}},
}

// FindTheme returns the theme with the given name. Lookup is exact, as the
// frontend stores theme names verbatim.
func FindTheme(name string) (ColorTheme, bool) {
	for _, t := range ColorThemes {
		if t.Name == name {
			return t, true
		}
	}
	return ColorThemes[0], false
}

// ThemeColors returns exactly count colors from the named theme, cycling
// through the palette when count exceeds its length.
func ThemeColors(themeName string, count int) []string {
	if count <= 0 {
		return []string{}
	}
	theme, _ := FindTheme(themeName)
	colors := make([]string, count)
	for i := range colors {
		colors[i] = theme.Colors[i%len(theme.Colors)]
	}
	return colors
}

// ThemeGradient returns count colors spread evenly along the theme's palette,
// blending neighbouring stops in CIE-Lab space.
func ThemeGradient(themeName string, count int) []string {
	if count <= 0 {
		return []string{}
	}
	theme, _ := FindTheme(themeName)
	stops := make([]colorful.Color, 0, len(theme.Colors))
	for _, hex := range theme.Colors {
		c, err := colorful.Hex(hex)
		if err != nil {
			continue
		}
		stops = append(stops, c)
	}
	if len(stops) == 0 {
		return ThemeColors(DefaultTheme, count)
	}
	if count == 1 || len(stops) == 1 {
		out := make([]string, count)
		for i := range out {
			out[i] = strings.ToUpper(stops[0].Hex())
		}
		return out
	}

	out := make([]string, count)
	segments := float64(len(stops) - 1)
	for i := 0; i < count; i++ {
		pos := float64(i) / float64(count-1) * segments
		idx := int(pos)
		if idx >= len(stops)-1 {
			out[i] = strings.ToUpper(stops[len(stops)-1].Hex())
			continue
		}
		c := stops[idx]
		if frac := pos - float64(idx); frac > 0 {
			c = c.BlendLab(stops[idx+1], frac).Clamped()
		}
		out[i] = strings.ToUpper(c.Hex())
	}
	return out
}

// NormalizeHexColor canonicalises a hex color to upper-case #RRGGBB. The second
// result is false when s is not a hex color (CSS names and rgba() strings are
// left to the caller).
func NormalizeHexColor(s string) (string, bool) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return s, false
	}
	return strings.ToUpper(c.Hex()), true
}
