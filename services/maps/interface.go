package maps

import (
	"context"
	"net/http"
	"time"

	"easybook/models"
	"easybook/utils"

	"go.uber.org/zap"
	gmaps "googlemaps.github.io/maps"
)

// MapsService wraps the Google Maps web services used by the booking flow.
type MapsService interface {
	Geocode(ctx context.Context, req models.GeocodeRequest) (*models.GeocodeResult, error)
	Directions(ctx context.Context, req models.DirectionsRequest) (*models.DirectionsResult, error)
	Distance(ctx context.Context, req models.DistanceRequest) ([]models.DistanceElement, error)
}

// GoogleMapsService is nil-client safe: without an API key every call fails
// with an upstream error.
type GoogleMapsService struct {
	client  *gmaps.Client
	Retries int
}

// NewGoogleMapsService builds the Maps client. Extra options are applied after
// the key and timeout, so tests can point it at a local server.
func NewGoogleMapsService(apiKey string, timeout time.Duration, retries int, opts ...gmaps.ClientOption) *GoogleMapsService {
	svc := &GoogleMapsService{Retries: retries}
	if apiKey == "" {
		return svc
	}
	options := append([]gmaps.ClientOption{
		gmaps.WithAPIKey(apiKey),
		gmaps.WithHTTPClient(&http.Client{Timeout: timeout}),
	}, opts...)
	client, err := gmaps.NewClient(options...)
	if err != nil {
		utils.GetLogger().Error("maps: client initialization failed", zap.Error(err))
		return svc
	}
	svc.client = client
	return svc
}
