package domain

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrUnsupportedPlan = errors.New("unsupported plan")
	ErrUnknownMetric   = errors.New("unknown usage metric")
	ErrProviderFailure = errors.New("provider failure")
)
