package geo_test

import (
	"errors"
	"testing"

	"hospital-api/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceMetersSymmetricAndZero(t *testing.T) {
	pts := []geo.Point{
		{Lat: 39.9336, Lng: 116.4402},
		{Lat: 31.2304, Lng: 121.4737},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 0.0001, Lng: -179.9999},
	}
	for _, a := range pts {
		assert.Equal(t, 0.0, geo.DistanceMeters(a.Lat, a.Lng, a.Lat, a.Lng))
		for _, b := range pts {
			assert.Equal(t, geo.DistanceMeters(a.Lat, a.Lng, b.Lat, b.Lng), geo.DistanceMeters(b.Lat, b.Lng, a.Lat, a.Lng))
		}
	}
}

func TestDistanceMetersKnownValues(t *testing.T) {
	tests := []struct {
		name   string
		a, b   geo.Point
		want   float64
		within float64
	}{
		{"beijing_shanghai", geo.Point{Lat: 39.9042, Lng: 116.4074}, geo.Point{Lat: 31.2304, Lng: 121.4737}, 1067000, 10000},
		{"dongsishitiao_40m", geo.Point{Lat: 39.9336, Lng: 116.4402}, geo.Point{Lat: 39.9339, Lng: 116.4405}, 42, 10},
		{"one_degree_equator", geo.Point{Lat: 0, Lng: 0}, geo.Point{Lat: 0, Lng: 1}, 111195, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.a.DistanceTo(tt.b), tt.within)
		})
	}
}

func TestParseLngLat(t *testing.T) {
	p, err := geo.ParseLngLat("116.440200, 39.933600")
	require.NoError(t, err)
	assert.Equal(t, geo.Point{Lat: 39.9336, Lng: 116.4402}, p)
	assert.Equal(t, "116.440200,39.933600", p.LngLat())

	for _, bad := range []string{"", "116.44", "a,b", "116.44,39.93,1", "0,0", "200,10"} {
		_, err := geo.ParseLngLat(bad)
		assert.True(t, errors.Is(err, geo.ErrMalformed), "input %q", bad)
	}
}

func TestWGS84ToGCJ02(t *testing.T) {
	in := geo.Point{Lat: 39.9087, Lng: 116.3975}
	out := geo.WGS84ToGCJ02(in)
	shift := in.DistanceTo(out)
	assert.Greater(t, shift, 100.0)
	assert.Less(t, shift, 1000.0)

	back := geo.GCJ02ToWGS84(out)
	assert.Less(t, in.DistanceTo(back), 50.0)

	abroad := geo.Point{Lat: 48.8566, Lng: 2.3522}
	assert.Equal(t, abroad, geo.WGS84ToGCJ02(abroad))
}

func TestGeohash(t *testing.T) {
	assert.Equal(t, "u4pruy", geo.Geohash(geo.Point{Lat: 57.64911, Lng: 10.40744}, 6))
	assert.Equal(t, "wx4g", geo.Geohash(geo.Point{Lat: 39.9336, Lng: 116.4402}, 4))
}
