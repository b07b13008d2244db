package kernel_test

import (
	"math"
	"testing"
	"time"

	"orderdispatch/internal/core/domain/model/kernel"
	"orderdispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocation(t *testing.T) {
	t.Run("should create location within bounds", func(t *testing.T) {
		loc, err := kernel.NewLocation(27.7172, 85.3240, "  Thamel  ")

		require.NoError(t, err)
		require.NoError(t, loc.Validate())
		assert.InDelta(t, 27.7172, loc.Lat(), 1e-9)
		assert.InDelta(t, 85.3240, loc.Lon(), 1e-9)
		assert.Equal(t, "Thamel", loc.Address())
	})

	t.Run("should accept boundary values", func(t *testing.T) {
		for _, c := range [][2]float64{{-90, -180}, {90, 180}, {0, 0}} {
			_, err := kernel.NewLocation(c[0], c[1], "")
			require.NoError(t, err, c)
		}
	})

	t.Run("should reject out of range coordinates", func(t *testing.T) {
		testCases := []struct {
			name     string
			lat, lon float64
			param    string
		}{
			{"latitude too small", -90.0001, 0, "latitude"},
			{"latitude too large", 91, 0, "latitude"},
			{"longitude too small", 0, -181, "longitude"},
			{"longitude too large", 0, 180.5, "longitude"},
			{"latitude is NaN", math.NaN(), 0, "latitude"},
		}

		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := kernel.NewLocation(tc.lat, tc.lon, "")

				require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
				assert.Contains(t, err.Error(), tc.param)
			})
		}
	})

	t.Run("should report both coordinates when both are invalid", func(t *testing.T) {
		_, err := kernel.NewLocation(100, 200, "")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "latitude")
		assert.Contains(t, err.Error(), "longitude")
	})
}

func TestValidateCoordinates(t *testing.T) {
	require.NoError(t, kernel.ValidateCoordinates(45, 45))
	require.ErrorIs(t, kernel.ValidateCoordinates(-91, 0), errs.ErrValueIsOutOfRange)
	assert.True(t, errs.IsValidation(kernel.ValidateCoordinates(0, 999)))
}

func TestLocation_ZeroValueIsInvalid(t *testing.T) {
	var loc kernel.Location
	valid, _ := kernel.NewLocation(1, 1, "")

	require.ErrorIs(t, loc.Validate(), kernel.ErrLocationIsNotConstructed)

	_, err := loc.DistanceKm(valid)
	require.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)

	_, err = valid.IsEqual(loc)
	require.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)
}

func TestLocation_DistanceKm(t *testing.T) {
	testCases := []struct {
		name     string
		from, to [2]float64
		expected float64
		delta    float64
	}{
		{"same point", [2]float64{27.7, 85.3}, [2]float64{27.7, 85.3}, 0, 1e-9},
		{"one degree of longitude on the equator", [2]float64{0, 0}, [2]float64{0, 1}, 111.195, 0.01},
		{"one degree of latitude", [2]float64{10, 20}, [2]float64{11, 20}, 111.195, 0.01},
		{"antipodal points", [2]float64{0, 0}, [2]float64{0, 180}, math.Pi * kernel.EarthRadiusKm, 0.001},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a, err := kernel.NewLocation(tc.from[0], tc.from[1], "")
			require.NoError(t, err)
			b, err := kernel.NewLocation(tc.to[0], tc.to[1], "")
			require.NoError(t, err)

			d, err := a.DistanceKm(b)

			require.NoError(t, err)
			assert.InDelta(t, tc.expected, d, tc.delta)

			back, err := b.DistanceKm(a)
			require.NoError(t, err)
			assert.InDelta(t, d, back, 1e-9)
		})
	}
}

func TestLocation_IsEqual(t *testing.T) {
	a, _ := kernel.NewLocation(1.5, 2.5, "home")
	b, _ := kernel.NewLocation(1.5, 2.5, "office")
	c, _ := kernel.NewLocation(1.5, 2.6, "home")

	equal, err := a.IsEqual(b)
	require.NoError(t, err)
	assert.True(t, equal)

	equal, err = a.IsEqual(c)
	require.NoError(t, err)
	assert.False(t, equal)
}

func TestNewPosition(t *testing.T) {
	loc, _ := kernel.NewLocation(1, 2, "")
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("NPT", 5*3600+45*60))

	pos, err := kernel.NewPosition(loc, at)

	require.NoError(t, err)
	assert.False(t, pos.IsZero())
	assert.Equal(t, time.UTC, pos.RecordedAt.Location())
	assert.True(t, pos.RecordedAt.Equal(at))

	_, err = kernel.NewPosition(kernel.Location{}, at)
	require.ErrorIs(t, err, kernel.ErrLocationIsNotConstructed)

	_, err = kernel.NewPosition(loc, time.Time{})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)

	assert.True(t, kernel.Position{}.IsZero())
}
