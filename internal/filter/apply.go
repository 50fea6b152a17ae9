package filter

import (
	"math"

	"github.com/chromacheck/chromacheck/internal/colour"
)

// Confusion bands on the hue wheel where red-green discrimination collapses.
// The selective hue rotation is strongest inside these bands and attenuated
// elsewhere, so already-discriminable hues are left mostly untouched.
const (
	redBandEnd     = 45.0  // reds and oranges: [0, 45] and [315, 360)
	redBandStart   = 315.0
	greenBandStart = 70.0 // yellow-greens through greens: [70, 165]
	greenBandEnd   = 165.0
	bandFalloff    = 30.0 // degrees over which the weight decays outside a band
	minHueWeight   = 0.25
)

// Apply transforms a colour through the correction filter at the given
// strength in [0, 1]. Sub-steps compose in order: per-channel gains, selective
// hue rotation, saturation rescale, contrast rescale about the per-pixel grey,
// brightness. A sub-step whose driving parameter is exactly 0 is a no-op, so
// an all-zero filter (or strength 0) returns the input unchanged.
func Apply(c colour.RGB, p Parameters, strength float64) colour.RGB {
	if strength <= 0 || p.IsZero() {
		return c
	}
	strength = colour.Clamp(strength, 0, 1)

	r := float64(c.R) / 255.0
	g := float64(c.G) / 255.0
	b := float64(c.B) / 255.0

	// Per-channel gains.
	if p.RedGain != 0 {
		r *= 1 + p.RedGain*strength
	}
	if p.GreenGain != 0 {
		g *= 1 + p.GreenGain*strength
	}
	if p.BlueGain != 0 {
		b *= 1 + p.BlueGain*strength
	}
	r, g, b = clampChannel(r), clampChannel(g), clampChannel(b)

	// Hue rotation and saturation operate in HSL space.
	if p.HueShift != 0 || p.Saturation != 0 {
		hsl := colour.RGBToHSL(floatRGB(r, g, b))
		if p.HueShift != 0 {
			hsl.H = colour.NormalizeHue(hsl.H + p.HueShift*strength*hueWeight(hsl.H))
		}
		if p.Saturation != 0 {
			hsl.S = colour.Clamp(hsl.S*(1+p.Saturation*strength), 0, 1)
		}
		rgb := colour.HSLToRGB(hsl)
		r = float64(rgb.R) / 255.0
		g = float64(rgb.G) / 255.0
		b = float64(rgb.B) / 255.0
	}

	// Contrast about the per-pixel grey level.
	if p.Contrast != 0 {
		grey := (r + g + b) / 3.0
		factor := 1 + p.Contrast*strength
		r = clampChannel(grey + (r-grey)*factor)
		g = clampChannel(grey + (g-grey)*factor)
		b = clampChannel(grey + (b-grey)*factor)
	}

	// Brightness.
	if p.Brightness != 0 {
		delta := p.Brightness * strength
		r = clampChannel(r + delta)
		g = clampChannel(g + delta)
		b = clampChannel(b + delta)
	}

	return floatRGB(r, g, b)
}

// hueWeight returns the attenuation factor for the selective hue rotation:
// 1.0 inside the red and green confusion bands, decaying linearly to
// minHueWeight over bandFalloff degrees outside them.
func hueWeight(h float64) float64 {
	h = colour.NormalizeHue(h)

	dist := math.Min(distToBand(h, redBandStart, redBandEnd+360), distToBand(h, greenBandStart, greenBandEnd))
	if dist <= 0 {
		return 1.0
	}
	if dist >= bandFalloff {
		return minHueWeight
	}
	return 1.0 - (1.0-minHueWeight)*(dist/bandFalloff)
}

// distToBand returns the angular distance from hue h to the band [start, end]
// on the wheel, 0 when h lies inside it. The band may wrap past 360.
func distToBand(h, start, end float64) float64 {
	// Test h and h+360 so wrapped bands are handled uniformly.
	for _, hh := range [2]float64{h, h + 360} {
		if hh >= start && hh <= end {
			return 0
		}
	}
	d := math.Min(colour.HueDistance(h, colour.NormalizeHue(start)), colour.HueDistance(h, colour.NormalizeHue(end)))
	return d
}

func clampChannel(v float64) float64 {
	return colour.Clamp(v, 0, 1)
}

func floatRGB(r, g, b float64) colour.RGB {
	return colour.RGB{
		R: uint8(math.Round(r * 255)),
		G: uint8(math.Round(g * 255)),
		B: uint8(math.Round(b * 255)),
	}
}
