package filter

import "sort"

// PresetNone is the empty preset.
const PresetNone = "none"

var presets = map[string][]Op{
	PresetNone: nil,
	"earlybird": {
		{OpSepia, 0.25},
		{OpContrast, 1.1},
		{OpBrightness, 1.05},
		{OpSaturate, 0.9},
	},
	"kodachrome": {
		{OpContrast, 1.2},
		{OpSaturate, 1.35},
		{OpBrightness, 1.02},
	},
	"polaroid": {
		{OpContrast, 0.9},
		{OpBrightness, 1.1},
		{OpSaturate, 0.85},
		{OpSepia, 0.1},
	},
	"portra": {
		{OpBrightness, 1.04},
		{OpContrast, 0.95},
		{OpSaturate, 0.9},
		{OpSepia, 0.08},
	},
	"lomo": {
		{OpContrast, 1.3},
		{OpSaturate, 1.25},
		{OpVignette, 0.5},
	},
	"faded": {
		{OpContrast, 0.85},
		{OpBrightness, 1.1},
		{OpSaturate, 0.7},
	},
}

// Preset returns a copy of the named preset's ops. Unknown names and the
// empty string return nil.
func Preset(name string) []Op {
	ops := presets[name]
	if len(ops) == 0 {
		return nil
	}
	out := make([]Op, len(ops))
	copy(out, ops)
	return out
}

// IsPreset reports whether name is a known preset.
func IsPreset(name string) bool {
	_, ok := presets[name]
	return ok
}

// PresetNames returns all preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
