// Package filter defines the tunable colour-correction filter: its parameter
// space, neighbourhood generation for local search, and the per-colour transform.
package filter

// Parameters is a fixed-shape record of the correction filter's continuous
// values. The zero value is the identity filter: every transform sub-step is
// skipped when its driving parameter is exactly 0. Parameters is a value type;
// tuning rounds produce new instances rather than editing a shared one.
type Parameters struct {
	// HueShift rotates hues toward more discriminable regions, in degrees.
	// The rotation is selective: strongest near the red/green confusion bands.
	HueShift float64 `json:"hueShift"`
	// Saturation boosts (positive) or mutes (negative) chroma, as a fraction.
	Saturation float64 `json:"saturation"`
	// Brightness lifts or lowers all channels, as a fraction.
	Brightness float64 `json:"brightness"`
	// Contrast rescales each channel about the per-pixel grey level.
	Contrast float64 `json:"contrast"`
	// RedGain, GreenGain and BlueGain scale individual channels; 0 is unity.
	RedGain   float64 `json:"redGain"`
	GreenGain float64 `json:"greenGain"`
	BlueGain  float64 `json:"blueGain"`
}

// IsZero reports whether every parameter is exactly 0 (the identity filter).
func (p Parameters) IsZero() bool {
	return p == Parameters{}
}

// Range bounds a single parameter. Invariant: Min <= Max and Step > 0.
type Range struct {
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
	Step float64 `json:"step"`
}

// paramDef binds a parameter name and range to its field accessors so the
// space can iterate the fixed shape generically.
type paramDef struct {
	name string
	rng  Range
	get  func(Parameters) float64
	set  func(*Parameters, float64)
}

var paramDefs = []paramDef{
	{
		name: "hueShift",
		rng:  Range{Min: -60, Max: 60, Step: 5},
		get:  func(p Parameters) float64 { return p.HueShift },
		set:  func(p *Parameters, v float64) { p.HueShift = v },
	},
	{
		name: "saturation",
		rng:  Range{Min: -0.5, Max: 0.5, Step: 0.05},
		get:  func(p Parameters) float64 { return p.Saturation },
		set:  func(p *Parameters, v float64) { p.Saturation = v },
	},
	{
		name: "brightness",
		rng:  Range{Min: -0.3, Max: 0.3, Step: 0.05},
		get:  func(p Parameters) float64 { return p.Brightness },
		set:  func(p *Parameters, v float64) { p.Brightness = v },
	},
	{
		name: "contrast",
		rng:  Range{Min: -0.5, Max: 0.5, Step: 0.05},
		get:  func(p Parameters) float64 { return p.Contrast },
		set:  func(p *Parameters, v float64) { p.Contrast = v },
	},
	{
		name: "redGain",
		rng:  Range{Min: -0.5, Max: 0.5, Step: 0.05},
		get:  func(p Parameters) float64 { return p.RedGain },
		set:  func(p *Parameters, v float64) { p.RedGain = v },
	},
	{
		name: "greenGain",
		rng:  Range{Min: -0.5, Max: 0.5, Step: 0.05},
		get:  func(p Parameters) float64 { return p.GreenGain },
		set:  func(p *Parameters, v float64) { p.GreenGain = v },
	},
	{
		name: "blueGain",
		rng:  Range{Min: -0.5, Max: 0.5, Step: 0.05},
		get:  func(p Parameters) float64 { return p.BlueGain },
		set:  func(p *Parameters, v float64) { p.BlueGain = v },
	},
}

// ParamNames returns the parameter names in their canonical order.
func ParamNames() []string {
	names := make([]string, len(paramDefs))
	for i, d := range paramDefs {
		names[i] = d.name
	}
	return names
}

// Preset returns a starting parameter set for a severity level. Stronger
// deficiencies start the search from a more aggressive correction.
func Preset(severity string) Parameters {
	switch severity {
	case "mild":
		return Parameters{HueShift: 10, Saturation: 0.1, Contrast: 0.05}
	case "moderate":
		return Parameters{HueShift: 20, Saturation: 0.15, Contrast: 0.1, RedGain: 0.05}
	case "strong":
		return Parameters{HueShift: 30, Saturation: 0.25, Contrast: 0.15, RedGain: 0.1, GreenGain: -0.05}
	default:
		return Parameters{}
	}
}
