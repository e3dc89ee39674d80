package service

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"

	"github.com/Serubin/AJD-Site/backend/internal/utils/geocodio"
	"github.com/Serubin/AJD-Site/shared/errors"
)

type DistrictService interface {
	Lookup(ctx context.Context, lat, lng string) (string, error)
}

type Geocoder interface {
	District(ctx context.Context, lat, lng string) (string, error)
}

type District struct {
	geocoder Geocoder
}

// NewDistrict takes a nil geocoder when no API key is configured.
func NewDistrict(geocoder Geocoder) *District {
	return &District{geocoder: geocoder}
}

func (d *District) Lookup(ctx context.Context, lat, lng string) (string, error) {
	lat, lng = strings.TrimSpace(lat), strings.TrimSpace(lng)
	if lat == "" || lng == "" {
		return "", errors.BadRequest("lat and lng query parameters are required")
	}
	if !validCoordinate(lat, 90) || !validCoordinate(lng, 180) {
		return "", errors.BadRequest("lat and lng must be valid coordinates")
	}
	if d.geocoder == nil {
		return "", errors.Config("Congressional district lookup is not configured")
	}

	district, err := d.geocoder.District(ctx, lat, lng)
	switch {
	case err == nil:
		return district, nil
	case stderrors.Is(err, geocodio.ErrNoDistrict):
		return "", errors.NotFound("Congressional district not found for the given coordinates")
	case stderrors.Is(err, geocodio.ErrUnparsable):
		e := errors.Upstream("parse district", err)
		e.Message = "Could not parse congressional district from response"
		return "", e
	default:
		return "", errors.Upstream("lookup district", err)
	}
}

func validCoordinate(s string, limit float64) bool {
	f, err := strconv.ParseFloat(s, 64)
	return err == nil && f >= -limit && f <= limit
}
