package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Serubin/AJD-Site/backend/internal/utils/geocodio"
	internal_errors "github.com/Serubin/AJD-Site/shared/errors"
)

type MockGeocoder struct {
	DistrictFunc func(ctx context.Context, lat, lng string) (string, error)
	calls        int
}

func (m *MockGeocoder) District(ctx context.Context, lat, lng string) (string, error) {
	m.calls++
	if m.DistrictFunc != nil {
		return m.DistrictFunc(ctx, lat, lng)
	}
	return "", nil
}

func TestDistrictLookup(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		geo := &MockGeocoder{DistrictFunc: func(ctx context.Context, lat, lng string) (string, error) {
			assert.Equal(t, "37.77", lat)
			assert.Equal(t, "-122.41", lng)
			return "CA-12", nil
		}}
		got, err := NewDistrict(geo).Lookup(ctx, " 37.77", "-122.41 ")
		require.NoError(t, err)
		assert.Equal(t, "CA-12", got)
	})

	tests := []struct {
		name       string
		lat, lng   string
		geoErr     error
		wantStatus int
		wantMsg    string
		wantCalled bool
	}{
		{name: "missing lat", lng: "1", wantStatus: http.StatusBadRequest},
		{name: "non numeric", lat: "north", lng: "1", wantStatus: http.StatusBadRequest},
		{name: "out of range", lat: "91", lng: "1", wantStatus: http.StatusBadRequest},
		{name: "no district", lat: "1", lng: "1", geoErr: geocodio.ErrNoDistrict, wantStatus: http.StatusNotFound, wantCalled: true},
		{name: "unparsable", lat: "1", lng: "1", geoErr: fmt.Errorf("%w: xx", geocodio.ErrUnparsable),
			wantStatus: http.StatusInternalServerError, wantMsg: "Could not parse congressional district from response", wantCalled: true},
		{name: "upstream", lat: "1", lng: "1", geoErr: errors.New("timeout"), wantStatus: http.StatusInternalServerError, wantCalled: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geo := &MockGeocoder{DistrictFunc: func(ctx context.Context, lat, lng string) (string, error) {
				return "", tt.geoErr
			}}
			_, err := NewDistrict(geo).Lookup(ctx, tt.lat, tt.lng)
			var e *internal_errors.ErrorWithStatusCode
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.wantStatus, e.StatusCode)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, e.Message)
			}
			assert.Equal(t, tt.wantCalled, geo.calls > 0)
		})
	}

	t.Run("not configured", func(t *testing.T) {
		_, err := NewDistrict(nil).Lookup(ctx, "1", "1")
		assert.Equal(t, http.StatusServiceUnavailable, internal_errors.StatusCode(err))
	})
}
