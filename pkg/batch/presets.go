package batch

import (
	"fmt"
	"sort"
)

var defaultViews = []string{
	"A10.view",
	"city_B.view",
	"conference_B.view",
	"teapots_B.view",
	"asianDragon_B.view",
	"fforest_B.view",
	"city2_B.view",
}

var presets = map[string]Config{
	"octant": {
		Executable:      `Release\FrustumCulling.exe`,
		StatsDir:        "../stats/",
		PrimInLeafCount: 10,
		SceneDir:        DefaultSceneDir,
		Views:           defaultViews,
		Variants: []Variant{
			{Flags: "-no-octant-test -no-plane-coherency -no-plane-masking", Suffix: ""},
			{Flags: "-no-plane-coherency -no-plane-masking", Suffix: "o"},
			{Flags: "-no-octant-test -no-plane-masking", Suffix: "l"},
			{Flags: "-no-octant-test -no-plane-coherency", Suffix: "m"},
			{Flags: "", Suffix: "olm"},
		},
	},
	// Reconstructed from the executable's switches; the script this table
	// came from is not available, so suffixes and flag wording are not original.
	"coherency": {
		Executable:      "Release/FrustumCulling.exe",
		StatsDir:        "../stats/",
		PrimInLeafCount: 8,
		SceneDir:        DefaultSceneDir,
		Views:           defaultViews,
		Variants: []Variant{
			{Flags: "-no-frustum-culling", Suffix: "nofc"},
			{Flags: "-no-camera-coherency -no-plane-coherency -no-plane-masking -no-octant-test", Suffix: "none"},
			{Flags: "-no-camera-coherency", Suffix: "olm"},
			{Flags: "-no-plane-coherency -no-plane-masking -no-octant-test", Suffix: "c"},
			{Flags: "", Suffix: "colm"},
		},
	},
}

// DefaultPreset is used when no preset is requested.
const DefaultPreset = "octant"

// Preset returns a copy of a named configuration.
func Preset(name string) (Config, error) {
	p, ok := presets[name]
	if !ok {
		return Config{}, &ConfigurationError{Field: "preset", Reason: fmt.Sprintf("unknown preset %q", name)}
	}
	p.Views = append([]string(nil), p.Views...)
	p.Variants = append([]Variant(nil), p.Variants...)
	return p, nil
}

// PresetNames lists the known presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
