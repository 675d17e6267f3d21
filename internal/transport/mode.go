package transport

import (
	"errors"
	"fmt"
	"strings"
)

// Mode is a way of getting around.
type Mode string

const (
	Car     Mode = "car"
	Bus     Mode = "bus"
	Subway  Mode = "subway"
	Walking Mode = "walking"
)

// Modes lists every mode in display order.
var Modes = []Mode{Car, Bus, Subway, Walking}

var ErrUnknownMode = errors.New("unknown transport mode")

// ParseMode accepts a mode name case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Car:
		return Car, nil
	case Bus:
		return Bus, nil
	case Subway:
		return Subway, nil
	case Walking:
		return Walking, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// IsTransit reports whether m is a public-transit mode.
func (m Mode) IsTransit() bool {
	return m == Bus || m == Subway
}

func (m Mode) bit() uint8 {
	switch m {
	case Car:
		return 1 << 0
	case Bus:
		return 1 << 1
	case Subway:
		return 1 << 2
	case Walking:
		return 1 << 3
	}
	return 0
}
