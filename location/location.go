// Package location resolves a user's city from device coordinates by picking
// the nearest of a fixed set of reference cities.
package location

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var ErrLocationUnavailable = errors.New("location unavailable")

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type City struct {
	Name        string      `json:"name"`
	State       string      `json:"state"`
	Coordinates Coordinates `json:"coordinates"`
}

// Cities are the reference points. Order matters: the first of two equally
// distant cities wins.
var Cities = []City{
	{Name: "Mumbai", State: "Maharashtra", Coordinates: Coordinates{19.0760, 72.8777}},
	{Name: "Delhi", State: "Delhi", Coordinates: Coordinates{28.7041, 77.1025}},
	{Name: "Bangalore", State: "Karnataka", Coordinates: Coordinates{12.9716, 77.5946}},
	{Name: "Hyderabad", State: "Telangana", Coordinates: Coordinates{17.3850, 78.4867}},
	{Name: "Chennai", State: "Tamil Nadu", Coordinates: Coordinates{13.0827, 80.2707}},
	{Name: "Kolkata", State: "West Bengal", Coordinates: Coordinates{22.5726, 88.3639}},
	{Name: "Pune", State: "Maharashtra", Coordinates: Coordinates{18.5204, 73.8567}},
	{Name: "Ahmedabad", State: "Gujarat", Coordinates: Coordinates{23.0225, 72.5714}},
}

// Provider yields the device position. Implementations return an error when
// the platform denies access or has no positioning capability.
type Provider interface {
	Position(ctx context.Context) (Coordinates, error)
}

// Nearest returns the candidate with the smallest squared Euclidean distance
// on raw lat/lng. It fails only for an empty candidate list.
func Nearest(at Coordinates, candidates []City) (City, error) {
	if len(candidates) == 0 {
		return City{}, fmt.Errorf("%w: no reference cities", ErrLocationUnavailable)
	}
	best := candidates[0]
	bestDist := squaredDistance(at, best.Coordinates)
	for _, c := range candidates[1:] {
		if d := squaredDistance(at, c.Coordinates); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, nil
}

// Resolve asks the provider for a position and maps it to a reference city.
// A nil provider or any provider failure yields ErrLocationUnavailable.
func Resolve(ctx context.Context, p Provider) (City, error) {
	if p == nil {
		return City{}, fmt.Errorf("%w: geolocation not supported", ErrLocationUnavailable)
	}
	at, err := p.Position(ctx)
	if err != nil {
		return City{}, fmt.Errorf("%w: %v", ErrLocationUnavailable, err)
	}
	return Nearest(at, Cities)
}

// ByName is the manual fallback when resolution is unavailable.
func ByName(name string) (City, bool) {
	for _, c := range Cities {
		if strings.EqualFold(c.Name, strings.TrimSpace(name)) {
			return c, true
		}
	}
	return City{}, false
}

func squaredDistance(a, b Coordinates) float64 {
	dLat := a.Lat - b.Lat
	dLng := a.Lng - b.Lng
	return dLat*dLat + dLng*dLng
}

// Fixed is a Provider with a known position, e.g. from command line flags.
type Fixed Coordinates

func (f Fixed) Position(ctx context.Context) (Coordinates, error) {
	return Coordinates(f), nil
}

// Denied is a Provider for platforms without geolocation access.
type Denied struct{}

func (Denied) Position(ctx context.Context) (Coordinates, error) {
	return Coordinates{}, errors.New("permission denied")
}
