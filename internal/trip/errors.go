package trip

import (
	"errors"

	"gostop.app/internal/sampler"
)

var (
	ErrLocationUnavailable = errors.New("current location is unavailable")
	ErrGeocodeFailed       = errors.New("address lookup failed")
	ErrRouteFailed         = errors.New("route lookup failed")

	// ErrNotReady is returned when a trip is requested before there is a
	// location fix and a non-empty transport selection.
	ErrNotReady = sampler.ErrNotReady
)

// Notice reports a non-fatal problem alongside a successful result.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func noticeFor(kind string, err error) Notice {
	return Notice{Kind: kind, Message: err.Error()}
}
