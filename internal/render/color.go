package render

import (
	"sync"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/saorsa-labs/saorsa/internal/buffer"
)

// downgrader converts buffer.Color values to the codes a given Capability
// can emit, matching by nearest CIELAB distance (sRGB -> linear -> XYZ -> LAB
// with the D65 reference white, via go-colorful's DistanceLab).
type downgrader struct {
	cap Capability

	mu    sync.Mutex
	cache map[cacheKey]int // RGB tuple (+ target) -> resolved 256/16 index
}

type cacheKey struct {
	r, g, b uint8
	to16    bool
}

func newDowngrader(cap Capability) *downgrader {
	return &downgrader{cap: cap, cache: make(map[cacheKey]int)}
}

// rgb256Palette maps every 256-color index to its representative RGB, built
// once: indices 0-15 are the basic 16, 16-231 the 6x6x6 cube, 232-255 the
// 24-step grayscale ramp.
var rgb256Palette = build256Palette()

func build256Palette() [256][3]uint8 {
	var pal [256][3]uint8
	basic16 := [16][3]uint8{
		{0, 0, 0}, {205, 0, 0}, {0, 205, 0}, {205, 205, 0},
		{0, 0, 238}, {205, 0, 205}, {0, 205, 205}, {229, 229, 229},
		{127, 127, 127}, {255, 0, 0}, {0, 255, 0}, {255, 255, 0},
		{92, 92, 255}, {255, 0, 255}, {0, 255, 255}, {255, 255, 255},
	}
	for i, c := range basic16 {
		pal[i] = c
	}
	steps := [6]uint8{0, 95, 135, 175, 215, 255}
	idx := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				pal[idx] = [3]uint8{steps[r], steps[g], steps[b]}
				idx++
			}
		}
	}
	for i := 0; i < 24; i++ {
		v := uint8(8 + i*10)
		pal[232+i] = [3]uint8{v, v, v}
	}
	return pal
}

func labOf(r, g, b uint8) colorful.Color {
	return colorful.Color{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
	}
}

// nearest256 returns the 256-color palette index closest to (r,g,b) in LAB
// space.
func nearest256(r, g, b uint8) int {
	target := labOf(r, g, b)
	best, bestDist := 0, -1.0
	for i, c := range rgb256Palette {
		d := target.DistanceLab(labOf(c[0], c[1], c[2]))
		if bestDist < 0 || d < bestDist {
			bestDist, best = d, i
		}
	}
	return best
}

// nearest16 returns the basic-16 palette index closest to (r,g,b) in LAB
// space.
func nearest16(r, g, b uint8) int {
	target := labOf(r, g, b)
	best, bestDist := 0, -1.0
	for i := 0; i < 16; i++ {
		c := rgb256Palette[i]
		d := target.DistanceLab(labOf(c[0], c[1], c[2]))
		if bestDist < 0 || d < bestDist {
			bestDist, best = d, i
		}
	}
	return best
}

// Downgrade converts c to the representation appropriate for the target
// capability. NO_COLOR handling (replace everything with reset) happens one
// layer up, in Render, since it is not a palette concern.
func (d *downgrader) Downgrade(c buffer.Color) buffer.Color {
	if !c.IsSet() || c.Kind == buffer.ColorReset {
		return c
	}

	switch d.cap {
	case TrueColor:
		return c
	case Monochrome:
		return buffer.Color{}
	case Color256:
		return d.to256(c)
	case Color16:
		return d.to16(c)
	default:
		return c
	}
}

func (d *downgrader) to256(c buffer.Color) buffer.Color {
	switch c.Kind {
	case buffer.ColorNamed:
		return buffer.IndexedColor(c.Named)
	case buffer.ColorIndexed:
		return c
	case buffer.ColorRGB:
		key := cacheKey{c.R, c.G, c.B, false}
		d.mu.Lock()
		if idx, ok := d.cache[key]; ok {
			d.mu.Unlock()
			return buffer.IndexedColor(uint8(idx))
		}
		d.mu.Unlock()
		idx := nearest256(c.R, c.G, c.B)
		d.mu.Lock()
		d.cache[key] = idx
		d.mu.Unlock()
		return buffer.IndexedColor(uint8(idx))
	}
	return c
}

func (d *downgrader) to16(c buffer.Color) buffer.Color {
	var r, g, b uint8
	switch c.Kind {
	case buffer.ColorNamed:
		if c.Named < 16 {
			return c
		}
		return c
	case buffer.ColorIndexed:
		p := rgb256Palette[c.Index]
		r, g, b = p[0], p[1], p[2]
	case buffer.ColorRGB:
		r, g, b = c.R, c.G, c.B
	default:
		return c
	}

	key := cacheKey{r, g, b, true}
	d.mu.Lock()
	if idx, ok := d.cache[key]; ok {
		d.mu.Unlock()
		return buffer.NamedColor(uint8(idx))
	}
	d.mu.Unlock()
	idx := nearest16(r, g, b)
	d.mu.Lock()
	d.cache[key] = idx
	d.mu.Unlock()
	return buffer.NamedColor(uint8(idx))
}
