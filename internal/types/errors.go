package types

import "errors"

var (
	ErrUpstreamUnavailable   = errors.New("upstream service unavailable")
	ErrMalformedResponse     = errors.New("malformed upstream response")
	ErrUnsupportedCapability = errors.New("capability not supported")
	ErrSessionNotFound       = errors.New("chat session not found")
	ErrSessionBusy           = errors.New("chat session busy")
)
