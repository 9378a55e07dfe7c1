package diagnosis

import (
	"encoding/json"
	"strings"
)

// ParseLocation reads the free-form location hint. A JSON object with
// latitude, longitude or address is used as is; any other text becomes the
// address. Blank input yields nil.
func ParseLocation(raw string) *Location {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "{") {
		var loc Location
		if err := json.Unmarshal([]byte(raw), &loc); err == nil {
			loc.Address = strings.TrimSpace(loc.Address)
			if loc.Latitude == nil && loc.Longitude == nil && loc.Address == "" {
				return nil
			}
			return &loc
		}
	}
	return &Location{Address: raw}
}
