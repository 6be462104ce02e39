package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Unknown is the fallback for every field the lookup could not resolve.
const Unknown = "Unknown"

// Location is the resolved network origin of a scan.
type Location struct {
	Country   string
	City      string
	Latitude  float64
	Longitude float64
	Raw       []byte
}

// Resolver looks up the approximate location of an IP address.
type Resolver interface {
	Lookup(ctx context.Context, ip string) Location
}

// HTTPResolver queries an ip-api compatible endpoint. Lookups are advisory:
// any failure or timeout yields the Unknown location, never an error.
type HTTPResolver struct {
	baseURL string
	client  *http.Client
}

// NewHTTPResolver creates a resolver against baseURL with a bounded timeout.
func NewHTTPResolver(baseURL string, timeout time.Duration) *HTTPResolver {
	return &HTTPResolver{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	Status  string  `json:"status"`
	Country string  `json:"country"`
	City    string  `json:"city"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// Lookup resolves ip to a Location, falling back to Unknown on any failure.
func (r *HTTPResolver) Lookup(ctx context.Context, ip string) Location {
	unknown := Location{Country: Unknown, City: Unknown}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s", r.baseURL, ip), nil)
	if err != nil {
		return unknown
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return unknown
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return unknown
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return unknown
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Status != "success" {
		return unknown
	}

	loc := Location{
		Country:   parsed.Country,
		City:      parsed.City,
		Latitude:  parsed.Lat,
		Longitude: parsed.Lon,
		Raw:       body,
	}
	if loc.Country == "" {
		loc.Country = Unknown
	}
	if loc.City == "" {
		loc.City = Unknown
	}
	return loc
}
