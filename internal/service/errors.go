package service

import "errors"

// The service layer collapses "row missing" and "row owned by someone else"
// into ErrForbidden for every mutating operation, so callers cannot probe for
// the existence of other users' video ids. ErrNotFound only escapes Get,
// where the row genuinely does not exist.
var (
	ErrUnauthenticated     = errors.New("authentication required")
	ErrForbidden           = errors.New("forbidden")
	ErrNotFound            = errors.New("not found")
	ErrUploadQuotaExceeded = errors.New("upload limit reached for current plan")
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")
)
