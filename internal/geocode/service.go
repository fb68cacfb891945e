// Package geocode wraps the OSM Nominatim search API behind the address
// resolution contract the scheduling engine consumes. Every call is a live
// external lookup; no caching happens here.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"meetingease_backend/platform/apperr"
	"meetingease_backend/platform/config"
	"meetingease_backend/platform/logger"
)

const (
	msgUpstreamFailed   = "Something went wrong."
	msgHouseNotResolved = "Please specify the correct house for the meeting."
)

// Service resolves free-form location parts into a canonical Address.
type Service struct {
	baseURL string
	client  *http.Client
	log     *logger.Logger
}

// NewService creates a geocoding service against the configured Nominatim host.
func NewService(cfg config.GeocoderConfig, log *logger.Logger) *Service {
	return &Service{
		baseURL: cfg.GetNominatimBaseURL(),
		client:  &http.Client{Timeout: 5 * time.Second},
		log:     log,
	}
}

// Resolve normalizes city/street/house into a canonical Address. A location
// the upstream cannot pin to a house number is a data-quality failure,
// distinct from authorization errors.
func (s *Service) Resolve(ctx context.Context, city, street, houseNumber string) (*Address, error) {
	params := url.Values{}
	params.Add("q", fmt.Sprintf("%s %s %s", city, street, houseNumber))
	params.Add("format", "json")
	params.Add("addressdetails", "1")
	params.Add("limit", "1")

	reqURL := fmt.Sprintf("%s/search?%s", s.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, msgUpstreamFailed, err)
	}
	req.Header.Set("User-Agent", "MeetingEase/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		s.log.Error("nominatim request failed", "error", err)
		return nil, apperr.Wrap(apperr.KindValidation, msgUpstreamFailed, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		s.log.Error("nominatim upstream error", "status", resp.StatusCode)
		return nil, apperr.Validation(msgUpstreamFailed)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		s.log.Error("failed to decode nominatim payload", "error", err)
		return nil, apperr.Wrap(apperr.KindValidation, msgUpstreamFailed, err)
	}

	if len(results) == 0 || results[0].Address.HouseNumber == "" {
		return nil, apperr.Validation(msgHouseNotResolved)
	}

	raw := results[0]
	return &Address{
		Region:      raw.Address.Region,
		City:        pickCity(raw.Address),
		Street:      raw.Address.Road,
		HouseNumber: raw.Address.HouseNumber,
		DisplayName: raw.DisplayName,
	}, nil
}

func pickCity(address nominatimAddress) string {
	if address.City != "" {
		return address.City
	}
	if address.Town != "" {
		return address.Town
	}
	if address.Village != "" {
		return address.Village
	}
	return address.Municipality
}
