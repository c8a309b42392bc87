// ABOUTME: Tests for icon name resolution and glyph lookup
// ABOUTME: Covers known names, the Sparkles fallback, and zero values

package icons

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse_KnownIcon(t *testing.T) {
	assert.Equal(t, Rocket, Parse("Rocket"))
	assert.Equal(t, "🚀", Parse("Rocket").Glyph())
}

func TestParse_UnknownFallsBackToSparkles(t *testing.T) {
	for _, name := range []string{"", "rocket", "NoSuchIcon"} {
		assert.Equal(t, Sparkles, Parse(name), "name %q", name)
	}
}

func TestGlyph_ZeroValue(t *testing.T) {
	var i Icon
	assert.Equal(t, Sparkles.Glyph(), i.Glyph())
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("Mail"))
	assert.True(t, Known("Sparkles"))
	assert.False(t, Known("mail"))
}
