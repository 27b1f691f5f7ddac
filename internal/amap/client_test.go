package amap_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"hospital-api/internal/amap"
	"hospital-api/internal/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *amap.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return amap.NewClient("test-key", srv.Client()).WithBaseURL(srv.URL)
}

func TestAround(t *testing.T) {
	var got url.Values
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/place/around", r.URL.Path)
		got = r.URL.Query()
		_, _ = w.Write([]byte(`{"status":"1","info":"OK","infocode":"10000","count":"1","pois":[
			{"id":"B1","name":"北京协和医院","location":"116.416357,39.912386","type":"医疗保健服务;综合医院","typecode":"090101","tel":[],"distance":"812"}]}`))
	})
	r, err := c.Around(context.Background(), geo.Point{Lat: 39.9336, Lng: 116.4402}, 0, "")
	require.NoError(t, err)
	require.Len(t, r.POIs, 1)
	assert.Equal(t, "北京协和医院", r.POIs[0].Name.String())
	assert.Equal(t, "test-key", got.Get("key"))
	assert.Equal(t, "116.440200,39.933600", got.Get("location"))
	assert.Equal(t, "5000", got.Get("radius"))
	assert.Equal(t, "090000", got.Get("types"))
}

func TestAroundStatusError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"0","info":"INVALID_USER_KEY","infocode":"10001"}`))
	})
	_, err := c.Around(context.Background(), geo.Point{Lat: 39.9, Lng: 116.4}, 3000, "090100")
	require.Error(t, err)
	assert.True(t, errors.Is(err, amap.ErrStatus))
}

func TestGeocode(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/geocode/geo", r.URL.Path)
		if r.URL.Query().Get("address") == "无此地址" {
			_, _ = w.Write([]byte(`{"status":"1","info":"OK","geocodes":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"1","info":"OK","geocodes":[{"location":"116.397499,39.908722","formatted_address":"北京市东城区天安门"}]}`))
	})
	p, err := c.Geocode(context.Background(), "天安门", "北京")
	require.NoError(t, err)
	assert.Equal(t, geo.Point{Lat: 39.908722, Lng: 116.397499}, p)

	_, err = c.Geocode(context.Background(), "无此地址", "")
	assert.True(t, errors.Is(err, amap.ErrNoGeocode))
}

func TestRawHTTPErrorAndMissingKey(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	_, err := c.Raw(context.Background(), "/v3/geocode/geo", url.Values{"address": {"x"}})
	assert.Error(t, err)

	_, err = amap.NewClient("", nil).Raw(context.Background(), "/v3/geocode/geo", nil)
	assert.True(t, errors.Is(err, amap.ErrMissingKey))
}
