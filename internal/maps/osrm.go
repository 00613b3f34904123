// README: OSRM driving-distance router.
package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ridebook/internal/types"
)

type osrmResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64 `json:"distance"` // meters
	Duration float64 `json:"duration"` // seconds
}

type OSRM struct {
	baseURL    string
	httpClient *http.Client
}

func NewOSRM(baseURL string, timeout time.Duration) *OSRM {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &OSRM{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (o *OSRM) DrivingDistance(ctx context.Context, from, to types.GeoPoint) (RouteResult, error) {
	// OSRM wants lon,lat order.
	url := fmt.Sprintf("%s/route/v1/driving/%s,%s;%s,%s?overview=false&alternatives=false&steps=false",
		o.baseURL,
		coord(from.Lon), coord(from.Lat),
		coord(to.Lon), coord(to.Lat),
	)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return RouteResult{}, fmt.Errorf("%w: build osrm request: %w", ErrUnavailable, err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return RouteResult{}, fmt.Errorf("%w: osrm: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	// OSRM reports NoRoute with a 400 and a JSON body, so decode before
	// looking at the status.
	var body osrmResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return RouteResult{}, fmt.Errorf("%w: osrm status %d: decode: %w", ErrUnavailable, resp.StatusCode, err)
	}
	switch body.Code {
	case "Ok":
	case "NoRoute", "NoSegment":
		return RouteResult{}, ErrNoRoute
	default:
		return RouteResult{}, fmt.Errorf("%w: osrm status %d code %q: %s", ErrUnavailable, resp.StatusCode, body.Code, body.Message)
	}
	if len(body.Routes) == 0 {
		return RouteResult{}, ErrNoRoute
	}

	res := RouteResult{DistanceMeters: body.Routes[0].Distance}
	if !res.valid() {
		return RouteResult{}, fmt.Errorf("%w: osrm returned invalid distance %v", ErrUnavailable, res.DistanceMeters)
	}
	return res, nil
}

func coord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
