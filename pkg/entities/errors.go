package entities

import "errors"

var (
	// ErrUpstream marks a failure of the content API itself: unreachable
	// endpoint, malformed payload, or a failed media download on the
	// random path. Callers must not retry.
	ErrUpstream = errors.New("content api failure")

	// ErrMediaUnavailable means both media probes failed or the downloaded
	// bytes could not be decoded as an image.
	ErrMediaUnavailable = errors.New("media unavailable")

	// ErrDeliveryFailed means send retries were exhausted. A best-effort
	// text notice has already been attempted when this surfaces.
	ErrDeliveryFailed = errors.New("delivery failed")
)
