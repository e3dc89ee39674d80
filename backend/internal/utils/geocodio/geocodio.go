// Package geocodio resolves coordinates to a congressional district through
// the Geocodio reverse geocoding API.
package geocodio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.geocod.io/v1.9"

var (
	ErrNoDistrict  = errors.New("geocodio: no congressional district for coordinates")
	ErrUnparsable  = errors.New("geocodio: unrecognised district identifier")
	ocdDistrictRe = regexp.MustCompile(`ocd-division/country:us/state:(\w\w)/cd:(\d+)`)
)

type Client struct {
	BaseURL    string
	APIKey     string
	HttpClient *http.Client
}

func New(apiKey string) *Client {
	return &Client{
		BaseURL:    DefaultBaseURL,
		APIKey:     apiKey,
		HttpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type reverseResponse struct {
	Results []struct {
		Fields struct {
			CongressionalDistricts []struct {
				OcdID string `json:"ocd_id"`
			} `json:"congressional_districts"`
		} `json:"fields"`
	} `json:"results"`
}

// StatusError is a non-2xx answer from Geocodio.
type StatusError struct {
	Status int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("geocodio: status %d", e.Status)
}

// District returns the district of the first result, formatted "CA-12".
func (c *Client) District(ctx context.Context, lat, lng string) (string, error) {
	q := url.Values{}
	q.Set("q", lat+","+lng)
	q.Set("fields", "cd")
	q.Set("api_key", c.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("geocodio: build request: %w", err)
	}
	resp, err := c.HttpClient.Do(req)
	if err != nil {
		// the URL carries the API key
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return "", fmt.Errorf("geocodio: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{Status: resp.StatusCode}
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("geocodio: decode response: %w", err)
	}
	if len(body.Results) == 0 || len(body.Results[0].Fields.CongressionalDistricts) == 0 ||
		body.Results[0].Fields.CongressionalDistricts[0].OcdID == "" {
		return "", ErrNoDistrict
	}
	return ParseOcdID(body.Results[0].Fields.CongressionalDistricts[0].OcdID)
}

// ParseOcdID turns "ocd-division/country:us/state:ca/cd:12" into "CA-12".
func ParseOcdID(id string) (string, error) {
	m := ocdDistrictRe.FindStringSubmatch(id)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrUnparsable, id)
	}
	return strings.ToUpper(m[1]) + "-" + m[2], nil
}
