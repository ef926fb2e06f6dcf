package api

import "errors"

// ApiError is the uniform failure shape returned by the gateway for every
// failure mode, so callers never need to distinguish transport errors from
// protocol errors. Status is 0 when no HTTP response was received.
type ApiError struct {
	Message string
	Status  int
}

func (e *ApiError) Error() string {
	return e.Message
}

// IsUnauthorized reports whether err is an ApiError carrying an
// authorization failure status.
func IsUnauthorized(err error) bool {
	var apiErr *ApiError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == 401 || apiErr.Status == 403
}

// IsNotFound reports whether err is an ApiError for a missing endpoint.
func IsNotFound(err error) bool {
	var apiErr *ApiError
	return errors.As(err, &apiErr) && apiErr.Status == 404
}
