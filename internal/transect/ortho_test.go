package transect

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOrthoSectionsAlongStraightCenterline(t *testing.T) {
	center := []Vertex{{0, 0}, {10, 0}}
	secs, err := OrthoSections(center, 2.5, 4, 0.5)
	require.NoError(t, err)

	// Chainages 0, 2.5, 5, 7.5, 10.
	require.Len(t, secs, 5)

	for k, sec := range secs {
		verts := sec.Vertices()
		require.Len(t, verts, 2)
		require.InDelta(t, 4.0, sec.Length(), 1e-12, "section %d width", k)
		require.Equal(t, 0.5, sec.Interval())

		// Perpendicular to an east-west centerline means constant X.
		require.InDelta(t, 2.5*float64(k), verts[0].X, 1e-12, "section %d chainage", k)
		require.InDelta(t, verts[0].X, verts[1].X, 1e-12, "section %d not perpendicular", k)
		// Centred on the line.
		require.InDelta(t, -2.0, verts[0].Y, 1e-12)
		require.InDelta(t, 2.0, verts[1].Y, 1e-12)
	}
}

func TestOrthoSectionsFollowBends(t *testing.T) {
	// L-shaped centerline; the section past the bend must rotate with it.
	center := []Vertex{{0, 0}, {4, 0}, {4, 4}}
	secs, err := OrthoSections(center, 2, 2, 1)
	require.NoError(t, err)
	require.Len(t, secs, 5) // chainages 0,2,4,6,8

	last := secs[4].Vertices()
	// On the northbound leg the normal points east-west: constant Y.
	require.InDelta(t, last[0].Y, last[1].Y, 1e-12)
	require.InDelta(t, 4.0, last[0].Y, 1e-12)
	require.InDelta(t, 2.0, math.Abs(last[1].X-last[0].X), 1e-12)
}

func TestOrthoSectionsValidation(t *testing.T) {
	center := []Vertex{{0, 0}, {10, 0}}

	if _, err := OrthoSections(center, 0, 4, 1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero step: got %v", err)
	}
	if _, err := OrthoSections(center, 2, -1, 1); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("negative width: got %v", err)
	}
	if _, err := OrthoSections(center, 2, 4, 0); !errors.Is(err, ErrInvalidParameter) {
		t.Errorf("zero interval: got %v", err)
	}
	if _, err := OrthoSections([]Vertex{{0, 0}}, 2, 4, 1); !errors.Is(err, ErrDegenerateTransect) {
		t.Errorf("single-vertex centerline: got %v", err)
	}
}
