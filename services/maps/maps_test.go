package maps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"easybook/models"
	"easybook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmaps "googlemaps.github.io/maps"
)

func newService(t *testing.T, handler http.HandlerFunc) *GoogleMapsService {
	return newRetryingService(t, 0, handler)
}

func newRetryingService(t *testing.T, retries int, handler http.HandlerFunc) *GoogleMapsService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewGoogleMapsService("test-key", 2*time.Second, retries, gmaps.WithBaseURL(srv.URL), gmaps.WithRateLimit(0))
}

func TestGeocode(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/geocode/json", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, "1600 Amphitheatre Pkwy", r.URL.Query().Get("address"))
		w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"1600 Amphitheatre Pkwy, Mountain View, CA","place_id":"abc","geometry":{"location":{"lat":37.42,"lng":-122.08}}}]}`))
	})

	result, err := svc.Geocode(context.Background(), models.GeocodeRequest{Address: "1600 Amphitheatre Pkwy"})
	require.NoError(t, err)
	assert.Equal(t, "abc", result.PlaceID)
	assert.Equal(t, models.LatLng{Lat: 37.42, Lng: -122.08}, result.Location)
}

func TestGeocodeZeroResults(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ZERO_RESULTS","results":[]}`))
	})

	_, err := svc.Geocode(context.Background(), models.GeocodeRequest{Address: "nowhere"})
	assert.True(t, utils.IsKind(err, utils.KindNotFound))

	_, err = svc.Geocode(context.Background(), models.GeocodeRequest{})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestDirections(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/maps/api/directions/json", r.URL.Path)
		assert.Equal(t, "walking", r.URL.Query().Get("mode"))
		assert.Equal(t, "tolls|ferries", r.URL.Query().Get("avoid"))
		w.Write([]byte(`{"status":"OK","routes":[{"overview_polyline":{"points":"abc123"},"legs":[{
			"distance":{"text":"1.2 km","value":1200},"duration":{"text":"15 mins","value":900},
			"steps":[{"html_instructions":"Head north","distance":{"text":"1.2 km","value":1200},"duration":{"text":"15 mins","value":900},
			"start_location":{"lat":1,"lng":2},"end_location":{"lat":3,"lng":4}}]}]}]}`))
	})

	result, err := svc.Directions(context.Background(), models.DirectionsRequest{Origin: "A", Destination: "B", Mode: "walking", Avoid: []string{"tolls", "ferries"}})
	require.NoError(t, err)
	assert.Equal(t, int64(1200), result.Distance.Value)
	assert.Equal(t, "abc123", result.OverviewPolyline)
	require.Len(t, result.Steps, 1)
	assert.Equal(t, "Head north", result.Steps[0].Instruction)
	assert.Equal(t, models.LatLng{Lat: 3, Lng: 4}, result.Steps[0].EndLocation)

	_, err = svc.Directions(context.Background(), models.DirectionsRequest{Origin: "A", Destination: "B", Mode: "flying"})
	assert.True(t, utils.IsKind(err, utils.KindValidation))
}

func TestDistanceMatrix(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "A|B", r.URL.Query().Get("origins"))
		w.Write([]byte(`{"status":"OK","rows":[
			{"elements":[{"status":"OK","distance":{"text":"5 km","value":5000},"duration":{"text":"9 mins","value":540}}]},
			{"elements":[{"status":"NOT_FOUND"}]}]}`))
	})

	elements, err := svc.Distance(context.Background(), models.DistanceRequest{Origins: []string{"A", "B"}, Destinations: []string{"C"}})
	require.NoError(t, err)
	require.Len(t, elements, 2)
	assert.Equal(t, int64(5000), elements[0].Distance.Value)
	assert.Equal(t, "B", elements[1].Origin)
	assert.Equal(t, "NOT_FOUND", elements[1].Status)
}

func TestUpstreamFailures(t *testing.T) {
	svc := newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"REQUEST_DENIED","error_message":"bad key"}`))
	})
	_, err := svc.Geocode(context.Background(), models.GeocodeRequest{Address: "x"})
	assert.True(t, utils.IsKind(err, utils.KindUpstream))

	svc = newService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	_, err = svc.Geocode(context.Background(), models.GeocodeRequest{Address: "x"})
	assert.True(t, utils.IsKind(err, utils.KindUpstream))

	unconfigured := NewGoogleMapsService("", time.Second, 0)
	_, err = unconfigured.Geocode(context.Background(), models.GeocodeRequest{Address: "x"})
	assert.True(t, utils.IsKind(err, utils.KindUpstream))
}

func TestTransientStatusIsRetried(t *testing.T) {
	var calls atomic.Int32
	svc := newRetryingService(t, 2, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Write([]byte(`{"status":"UNKNOWN_ERROR"}`))
			return
		}
		w.Write([]byte(`{"status":"OK","results":[{"formatted_address":"Main St","place_id":"p1","geometry":{"location":{"lat":1,"lng":2}}}]}`))
	})
	result, err := svc.Geocode(context.Background(), models.GeocodeRequest{Address: "Main St"})
	require.NoError(t, err)
	assert.Equal(t, "p1", result.PlaceID)
	assert.EqualValues(t, 2, calls.Load())

	calls.Store(0)
	denied := newRetryingService(t, 2, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"status":"REQUEST_DENIED"}`))
	})
	_, err = denied.Geocode(context.Background(), models.GeocodeRequest{Address: "Main St"})
	assert.True(t, utils.IsKind(err, utils.KindUpstream))
	assert.EqualValues(t, 1, calls.Load())
}

func TestDurationText(t *testing.T) {
	assert.Equal(t, models.TextValue{Text: "15 mins", Value: 900}, duration(15*time.Minute))
	assert.Equal(t, "1 hour 5 mins", duration(65*time.Minute).Text)
	assert.Equal(t, "2 hours 0 mins", duration(2*time.Hour).Text)
}
