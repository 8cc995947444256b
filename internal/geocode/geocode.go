// Package geocode resolves a typed address into coordinates when the client
// could not supply them (geolocation denied or unavailable).
package geocode

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"reliefmatch/backend/internal/domain/geo"

	"googlemaps.github.io/maps"
)

var (
	ErrNoCoordinates   = errors.New("coordinates are required (geocoding is not configured)")
	ErrAddressNotFound = errors.New("address could not be located")
	ErrAddressRequired = errors.New("address is required")
)

// IsInputError reports whether err is the caller's fault (bad or unlocatable
// address, missing coordinates) rather than a geocoding outage.
func IsInputError(err error) bool {
	return errors.Is(err, ErrAddressRequired) ||
		errors.Is(err, ErrNoCoordinates) ||
		errors.Is(err, ErrAddressNotFound) ||
		errors.Is(err, geo.ErrMalformedLocation)
}

type Geocoder interface {
	Geocode(ctx context.Context, address string) (geo.Location, error)
}

// Input is the location part of request/resource forms.
// Lat and Lng are optional; both or neither must be set.
type Input struct {
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Address string   `json:"address"`
}

// Resolve returns the location for in, geocoding the address when coordinates
// are missing. g may be nil.
func Resolve(ctx context.Context, g Geocoder, in Input) (geo.Location, error) {
	addr := strings.TrimSpace(in.Address)
	if addr == "" {
		return geo.Location{}, ErrAddressRequired
	}

	if in.Lat != nil && in.Lng != nil {
		l := geo.Location{Lat: *in.Lat, Lng: *in.Lng, Address: addr}
		if !l.Valid() {
			return geo.Location{}, geo.ErrMalformedLocation
		}
		return l, nil
	}
	if in.Lat != nil || in.Lng != nil {
		return geo.Location{}, fmt.Errorf("%w: lat and lng must be sent together", geo.ErrMalformedLocation)
	}

	if g == nil {
		return geo.Location{}, ErrNoCoordinates
	}
	l, err := g.Geocode(ctx, addr)
	if err != nil {
		return geo.Location{}, err
	}
	l.Address = addr
	return l, nil
}

// MapsGeocoder uses the Google Maps Geocoding API.
type MapsGeocoder struct {
	client *maps.Client
}

func NewMapsGeocoder(apiKey string) (*MapsGeocoder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("MAPS_API_KEY is not set")
	}
	c, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return &MapsGeocoder{client: c}, nil
}

func (g *MapsGeocoder) Geocode(ctx context.Context, address string) (geo.Location, error) {
	results, err := g.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return geo.Location{}, fmt.Errorf("geocode: %w", err)
	}
	if len(results) == 0 {
		return geo.Location{}, ErrAddressNotFound
	}
	ll := results[0].Geometry.Location
	return geo.Location{Lat: ll.Lat, Lng: ll.Lng, Address: address}, nil
}
