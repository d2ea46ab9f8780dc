package server

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-f]{6}$`)

// channelValues parses the three channel bytes out of a "#rrggbb" string.
func channelValues(t *testing.T, color string) [3]int {
	t.Helper()
	require.Regexp(t, colorPattern, color)

	var channels [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseInt(color[1+2*i:3+2*i], 16, 32)
		require.NoError(t, err)
		channels[i] = int(v)
	}
	return channels
}

func TestGenerateColorFormat(t *testing.T) {
	assigner := NewIdentityColorAssigner(DefaultMinBrightness)

	for i := 0; i < 200; i++ {
		color := assigner.Generate()
		assert.Regexp(t, colorPattern, color)
	}
}

func TestGenerateColorRespectsMinBrightness(t *testing.T) {
	assigner := NewIdentityColorAssigner(50)

	for i := 0; i < 500; i++ {
		for _, channel := range channelValues(t, assigner.Generate()) {
			assert.GreaterOrEqual(t, channel, 50)
			assert.LessOrEqual(t, channel, 255)
		}
	}
}

func TestGenerateColorMaxBrightnessPinsChannels(t *testing.T) {
	assigner := NewIdentityColorAssigner(255)

	assert.Equal(t, "#ffffff", assigner.Generate())
}

func TestGenerateColorClampsOutOfRangeBrightness(t *testing.T) {
	low := NewIdentityColorAssigner(-20)
	high := NewIdentityColorAssigner(999)

	for _, channel := range channelValues(t, low.Generate()) {
		assert.GreaterOrEqual(t, channel, 0)
		assert.LessOrEqual(t, channel, 255)
	}
	assert.Equal(t, "#ffffff", high.Generate())
}
