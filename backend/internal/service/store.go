package service

import (
	stderrors "errors"
	"net/http"

	rs "github.com/Serubin/AJD-Site/backend/internal/storage/recordstore"
	"github.com/Serubin/AJD-Site/shared/errors"
)

// storeError converts a record store failure into the error returned to
// handlers.
func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, rs.ErrNotConfigured) {
		return &errors.ErrorWithStatusCode{
			Message:    "Service is not configured",
			StatusCode: http.StatusServiceUnavailable,
			Err:        err,
		}
	}
	if stderrors.Is(err, rs.ErrUnsafeValue) {
		return errors.BadRequest("Invalid lookup value")
	}
	if isMissing(err) {
		return &errors.ErrorWithStatusCode{Message: "Not found", StatusCode: http.StatusNotFound, Err: err}
	}
	return errors.Upstream(op, err)
}

func isMissing(err error) bool {
	var nf *rs.NotFoundError
	return stderrors.As(err, &nf)
}
