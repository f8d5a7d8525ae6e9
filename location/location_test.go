package location

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveNearest(t *testing.T) {
	tests := []struct {
		description string
		at          Coordinates
		expected    string
	}{
		{"exact reference point", Coordinates{28.7041, 77.1025}, "Delhi"},
		{"Navi Mumbai", Coordinates{19.0330, 73.0297}, "Mumbai"},
		{"Whitefield", Coordinates{12.9698, 77.7500}, "Bangalore"},
		{"Howrah", Coordinates{22.5958, 88.2636}, "Kolkata"},
		{"far away", Coordinates{51.5074, -0.1278}, "Ahmedabad"},
	}

	for _, test := range tests {
		city, err := Resolve(context.Background(), Fixed(test.at))
		require.NoError(t, err, test.description)
		assert.Equalf(t, test.expected, city.Name, test.description)
	}
}

func TestNearestTieGoesToFirst(t *testing.T) {
	candidates := []City{
		{Name: "West", Coordinates: Coordinates{0, -1}},
		{Name: "East", Coordinates: Coordinates{0, 1}},
	}
	city, err := Nearest(Coordinates{0, 0}, candidates)
	require.NoError(t, err)
	assert.Equal(t, "West", city.Name)
}

func TestResolveUnavailable(t *testing.T) {
	_, err := Resolve(context.Background(), Denied{})
	assert.ErrorIs(t, err, ErrLocationUnavailable)

	_, err = Resolve(context.Background(), nil)
	assert.ErrorIs(t, err, ErrLocationUnavailable)

	_, err = Nearest(Coordinates{}, nil)
	assert.ErrorIs(t, err, ErrLocationUnavailable)

	// manual selection still works
	city, ok := ByName(" pune ")
	assert.True(t, ok)
	assert.Equal(t, "Maharashtra", city.State)

	_, ok = ByName("Atlantis")
	assert.False(t, ok)
}
