// Package effects renders a sparkle burst shown over a page whilst it flips.
package effects

import (
	"math"
	"math/rand/v2"
	"strings"
)

// DefaultParticles is the number of particles in a burst.
const DefaultParticles = 12

// glyphs by remaining life, brightest last.
var glyphs = []rune{'.', '·', '+', '*', '✦'}

// Point is a position on the character grid, in cells.
type Point struct {
	X, Y float64
}

// Particle is a single sparkle.
type Particle struct {
	Pos Point
	// Vel is the velocity in cells per second.
	Vel Point
	// Life is the remaining lifetime in seconds.
	Life    float64
	MaxLife float64
}

// Alive returns true while the particle has life remaining.
func (p Particle) Alive() bool { return p.Life > 0 }

// Burst emits count particles from origin, in evenly spread directions with a
// random jitter. A nil rng uses the global source.
func Burst(origin Point, count int, rng *rand.Rand) []Particle {
	if count <= 0 {
		return nil
	}
	float := rand.Float64
	if rng != nil {
		float = rng.Float64
	}
	particles := make([]Particle, count)
	for i := range particles {
		angle := 2*math.Pi*float64(i)/float64(count) + (float()-0.5)*0.5
		speed := 6 + float()*6
		life := 0.4 + float()*0.4
		particles[i] = Particle{
			Pos: origin,
			// cells are roughly twice as tall as they are wide
			Vel:     Point{X: math.Cos(angle) * speed, Y: math.Sin(angle) * speed / 2},
			Life:    life,
			MaxLife: life,
		}
	}
	return particles
}

// Step advances particles by dt seconds, returning those still alive.
func Step(particles []Particle, dt float64) []Particle {
	alive := particles[:0]
	for _, p := range particles {
		p.Pos.X += p.Vel.X * dt
		p.Pos.Y += p.Vel.Y * dt
		p.Life -= dt
		if p.Alive() {
			alive = append(alive, p)
		}
	}
	return alive
}

// Render draws particles onto a w by h grid of characters. Cells without a
// particle are spaces; particles off the grid are skipped.
func Render(particles []Particle, w, h int) string {
	if w <= 0 || h <= 0 {
		return ""
	}
	grid := make([][]rune, h)
	for y := range grid {
		grid[y] = []rune(strings.Repeat(" ", w))
	}
	for _, p := range particles {
		x, y := int(math.Round(p.Pos.X)), int(math.Round(p.Pos.Y))
		if x < 0 || x >= w || y < 0 || y >= h || !p.Alive() {
			continue
		}
		grid[y][x] = glyph(p)
	}
	lines := make([]string, h)
	for y, row := range grid {
		lines[y] = string(row)
	}
	return strings.Join(lines, "\n")
}

func glyph(p Particle) rune {
	if p.MaxLife <= 0 {
		return glyphs[0]
	}
	i := int(p.Life / p.MaxLife * float64(len(glyphs)))
	return glyphs[min(max(i, 0), len(glyphs)-1)]
}
