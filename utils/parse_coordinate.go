package utils

import (
	"fmt"
	"strconv"
	"strings"

	"road-route-server/routing"
)

// ParseCoordinate parses "lat,lon" (whitespace around either part is ignored).
func ParseCoordinate(input string) (routing.Coordinate, error) {
	parts := strings.Split(input, ",")
	if len(parts) != 2 {
		return routing.Coordinate{}, fmt.Errorf("expected \"lat,lon\", got %q", input)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return routing.Coordinate{}, fmt.Errorf("invalid latitude %q: %w", parts[0], err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return routing.Coordinate{}, fmt.Errorf("invalid longitude %q: %w", parts[1], err)
	}

	c := routing.Coordinate{Lat: lat, Lon: lon}
	if !c.Valid() {
		return routing.Coordinate{}, fmt.Errorf("coordinate %s is out of range", c)
	}
	return c, nil
}

// ParseCoordinates parses a ";"-separated list of "lat,lon" pairs.
func ParseCoordinates(input string) ([]routing.Coordinate, error) {
	var out []routing.Coordinate
	for _, part := range strings.Split(input, ";") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		c, err := ParseCoordinate(part)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
