package geocode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go-aduan/types"
)

func TestDistanceKm_SamePointIsZero(t *testing.T) {
	assert.Equal(t, 0.0, DistanceKm(-6.2, 106.8, -6.2, 106.8))
}

func TestDistanceKm_KnownDistances(t *testing.T) {
	// Monas to Bundaran HI is roughly 2.3 km.
	d := DistanceKm(-6.1754, 106.8272, -6.1950, 106.8230)
	assert.InDelta(t, 2.2, d, 0.2)

	// One degree of latitude is about 111 km.
	assert.InDelta(t, 111.19, DistanceKm(0, 0, 1, 0), 0.1)
}

func TestDistanceKm_Symmetric(t *testing.T) {
	a := DistanceKm(-6.2, 106.8, -7.25, 112.75)
	b := DistanceKm(-7.25, 112.75, -6.2, 106.8)
	assert.Equal(t, a, b)
}

func TestAdministrativeQuery(t *testing.T) {
	loc := types.Location{Village: "Menteng", District: "Jakarta Pusat", Province: "DKI Jakarta"}
	assert.Equal(t, "Menteng, Jakarta Pusat, DKI Jakarta", AdministrativeQuery(loc))
	assert.Equal(t, "", AdministrativeQuery(types.Location{}))
}
