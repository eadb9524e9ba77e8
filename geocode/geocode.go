package geocode

import (
	"context"
	"fmt"
	"strings"

	"go-aduan/types"
	"googlemaps.github.io/maps"
)

// MapsGeocoder resolves place names to coordinates with the Google Maps
// geocoding API.
type MapsGeocoder struct {
	client *maps.Client
	region string
}

// NewMapsGeocoder creates a geocoder biased towards region (a ccTLD such as "id").
func NewMapsGeocoder(apiKey, region string) (*MapsGeocoder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("maps API key not set")
	}
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &MapsGeocoder{client: client, region: region}, nil
}

// Geocode returns the coordinates and formatted address of the best match.
// A nil result with a nil error means the address could not be resolved.
func (g *MapsGeocoder) Geocode(ctx context.Context, address string) (*types.Coordinates, string, error) {
	req := &maps.GeocodingRequest{
		Address: address,
		Region:  g.region,
	}

	// Forward geocode: get latitude and longitude for the given address.
	results, err := g.client.Geocode(ctx, req)
	if err != nil {
		return nil, "", fmt.Errorf("geocode %q: %w", address, err)
	}
	if len(results) == 0 {
		return nil, "", nil
	}

	loc := results[0].Geometry.Location
	return &types.Coordinates{Lat: loc.Lat, Lng: loc.Lng}, results[0].FormattedAddress, nil
}

// AdministrativeQuery joins the administrative names of a location from most
// to least specific, e.g. "Menteng, Jakarta Pusat, DKI Jakarta".
func AdministrativeQuery(loc types.Location) string {
	var parts []string
	for _, name := range []string{loc.Village, loc.SubDistrict, loc.District, loc.Province} {
		if name != "" {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, ", ")
}
