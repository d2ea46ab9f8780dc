// Package server assigns display colors to connection aliases.
package server

import (
	"fmt"
	"math/rand"
)

// DefaultMinBrightness keeps generated colors readable on a light background.
const DefaultMinBrightness = 50

// IdentityColorAssigner produces random badge colors for joined connections.
// Colors are cosmetic: there is no uniqueness guarantee and collisions are
// expected at scale.
type IdentityColorAssigner struct {
	minBrightness int
}

// NewIdentityColorAssigner creates an assigner whose channels never fall below
// minBrightness. Out-of-range values are clamped to [0, 255].
func NewIdentityColorAssigner(minBrightness int) *IdentityColorAssigner {
	if minBrightness < 0 {
		minBrightness = 0
	}
	if minBrightness > 255 {
		minBrightness = 255
	}
	return &IdentityColorAssigner{minBrightness: minBrightness}
}

// Generate returns a "#rrggbb" color with each channel drawn independently and
// uniformly from [minBrightness, 255], rendered as lowercase zero-padded hex.
func (a *IdentityColorAssigner) Generate() string {
	span := 256 - a.minBrightness
	r := a.minBrightness + rand.Intn(span)
	g := a.minBrightness + rand.Intn(span)
	b := a.minBrightness + rand.Intn(span)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
