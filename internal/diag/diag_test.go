package diag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

func TestCombine(t *testing.T) {
	assert.NoError(t, Combine(nil))

	ws := []Warning{
		New(MalformedCoord, "a,b,c", errors.New("bad number")),
		Newf(MissingTexture, "grass", "not found under %s", "/tex"),
	}
	err := Combine(ws)
	require.Error(t, err)

	parts := multierr.Errors(err)
	require.Len(t, parts, 2)
	assert.Contains(t, parts[0].Error(), "malformed-coord")
	assert.Contains(t, parts[1].Error(), "not found under /tex")

	var w Warning
	require.True(t, errors.As(parts[1], &w))
	assert.Equal(t, MissingTexture, w.Kind)
}

func TestWarningErrorWithoutCause(t *testing.T) {
	w := New(LargeVolume, "2000000 cells", nil)
	assert.Equal(t, "large-volume: 2000000 cells", w.Error())
}

func TestKinds(t *testing.T) {
	assert.True(t, GeometryFallback.Degrading())
	assert.True(t, MissingAtlasFace.Degrading())
	assert.False(t, MalformedCoord.Degrading())
	assert.False(t, DegenerateFace.Degrading())
	assert.Equal(t, "kind(99)", Kind(99).String())

	ws := []Warning{New(DegenerateFace, "x", nil), New(DegenerateFace, "y", nil), New(LargeVolume, "z", nil)}
	assert.Equal(t, 2, Count(ws, DegenerateFace))
	assert.Len(t, New(EntitySkipped, "tree", nil).Fields(), 3)
}
