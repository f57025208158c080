package maps

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"easybook/models"
	"easybook/utils"
	"easybook/validation"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	gmaps "googlemaps.github.io/maps"
)

// call runs op with bounded exponential backoff. Transport failures and the
// API's transient statuses are retried; everything else is returned at once.
func call[T any](ctx context.Context, s *GoogleMapsService, endpoint string, op func(*gmaps.Client) (T, error)) (T, error) {
	var zero T
	if s.client == nil {
		return zero, utils.NewUpstreamError("Maps service is not configured", nil)
	}
	policy := backoff.NewExponentialBackOff(backoff.WithInitialInterval(200 * time.Millisecond))
	retrying := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(max(s.Retries, 0))), ctx)

	out, err := backoff.RetryWithData(func() (T, error) {
		v, err := op(s.client)
		if err != nil && !transient(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, retrying)
	if err != nil {
		return zero, translate(endpoint, err)
	}
	return out, nil
}

func transient(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return !errors.Is(err, context.Canceled)
	}
	msg := err.Error()
	return strings.Contains(msg, "UNKNOWN_ERROR") || strings.Contains(msg, "OVER_QUERY_LIMIT")
}

// translate maps client errors onto app errors. The client reports API
// statuses as "maps: STATUS - message".
func translate(endpoint string, err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "NOT_FOUND"):
		return utils.NewNotFoundError("No results found")
	case strings.Contains(msg, "INVALID_REQUEST"), strings.Contains(msg, "MAX_"):
		return utils.NewValidationError("Invalid maps request")
	}
	utils.GetLogger().Warn("Maps request failed", zap.String("endpoint", endpoint), zap.Error(err))
	return utils.NewUpstreamError("Maps request failed", fmt.Errorf("maps %s: %w", endpoint, err))
}

func latLng(p gmaps.LatLng) models.LatLng {
	return models.LatLng{Lat: p.Lat, Lng: p.Lng}
}

func distance(d gmaps.Distance) models.TextValue {
	return models.TextValue{Text: d.HumanReadable, Value: int64(d.Meters)}
}

// duration renders seconds the way the Maps API labels them, e.g. "1 hour 5 mins".
func duration(d time.Duration) models.TextValue {
	mins := int64(d.Round(time.Minute) / time.Minute)
	var text string
	switch hours := mins / 60; {
	case hours == 0 && mins == 1:
		text = "1 min"
	case hours == 0:
		text = fmt.Sprintf("%d mins", mins)
	case hours == 1:
		text = fmt.Sprintf("1 hour %d mins", mins%60)
	default:
		text = fmt.Sprintf("%d hours %d mins", hours, mins%60)
	}
	return models.TextValue{Text: text, Value: int64(d / time.Second)}
}

func (s *GoogleMapsService) Geocode(ctx context.Context, req models.GeocodeRequest) (*models.GeocodeResult, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	results, err := call(ctx, s, "geocode", func(c *gmaps.Client) ([]gmaps.GeocodingResult, error) {
		return c.Geocode(ctx, &gmaps.GeocodingRequest{Address: req.Address})
	})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, utils.NewNotFoundError("No results found for the given address")
	}
	r := results[0]
	components := make([]models.AddressComponent, 0, len(r.AddressComponents))
	for _, c := range r.AddressComponents {
		components = append(components, models.AddressComponent{LongName: c.LongName, ShortName: c.ShortName, Types: c.Types})
	}
	return &models.GeocodeResult{
		FormattedAddress:  r.FormattedAddress,
		Location:          latLng(r.Geometry.Location),
		PlaceID:           r.PlaceID,
		AddressComponents: components,
	}, nil
}

func (s *GoogleMapsService) Directions(ctx context.Context, req models.DirectionsRequest) (*models.DirectionsResult, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	if req.Mode == "" {
		req.Mode = "driving"
	}
	query := &gmaps.DirectionsRequest{
		Origin:      req.Origin,
		Destination: req.Destination,
		Mode:        gmaps.Mode(req.Mode),
	}
	for _, a := range req.Avoid {
		query.Avoid = append(query.Avoid, gmaps.Avoid(a))
	}

	routes, err := call(ctx, s, "directions", func(c *gmaps.Client) ([]gmaps.Route, error) {
		routes, _, err := c.Directions(ctx, query)
		return routes, err
	})
	if err != nil {
		return nil, err
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return nil, utils.NewNotFoundError("No route found")
	}
	route := routes[0]
	leg := route.Legs[0]
	out := &models.DirectionsResult{
		Distance:         distance(leg.Distance),
		Duration:         duration(leg.Duration),
		Steps:            make([]models.RouteStep, 0, len(leg.Steps)),
		OverviewPolyline: route.OverviewPolyline.Points,
	}
	for _, step := range leg.Steps {
		out.Steps = append(out.Steps, models.RouteStep{
			Instruction:   step.HTMLInstructions,
			Distance:      distance(step.Distance),
			Duration:      duration(step.Duration),
			StartLocation: latLng(step.StartLocation),
			EndLocation:   latLng(step.EndLocation),
		})
	}
	return out, nil
}

// Distance returns one element per origin/destination pair, origin-major.
// Pairs Google could not route keep their element status instead of failing the call.
func (s *GoogleMapsService) Distance(ctx context.Context, req models.DistanceRequest) ([]models.DistanceElement, error) {
	if err := validation.Struct(&req); err != nil {
		return nil, err
	}
	if req.Mode == "" {
		req.Mode = "driving"
	}
	query := &gmaps.DistanceMatrixRequest{
		Origins:      req.Origins,
		Destinations: req.Destinations,
		Mode:         gmaps.Mode(req.Mode),
	}
	matrix, err := call(ctx, s, "distancematrix", func(c *gmaps.Client) (*gmaps.DistanceMatrixResponse, error) {
		return c.DistanceMatrix(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	out := make([]models.DistanceElement, 0, len(req.Origins)*len(req.Destinations))
	for i, row := range matrix.Rows {
		if i >= len(req.Origins) {
			break
		}
		for j, el := range row.Elements {
			if j >= len(req.Destinations) || el == nil {
				break
			}
			out = append(out, models.DistanceElement{
				Origin:      req.Origins[i],
				Destination: req.Destinations[j],
				Status:      el.Status,
				Distance:    distance(el.Distance),
				Duration:    duration(el.Duration),
			})
		}
	}
	return out, nil
}
