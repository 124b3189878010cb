package config

import (
	"errors"
	"strconv"
	"strings"

	"github.com/phanxgames/tableau"
)

var errColorFormat = errors.New("config: color must be #rrggbb or #rrggbbaa")

// ParseColor parses a #rrggbb or #rrggbbaa hex color.
func ParseColor(s string) (tableau.Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return tableau.Color{}, errColorFormat
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return tableau.Color{}, errColorFormat
	}
	return tableau.Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}
