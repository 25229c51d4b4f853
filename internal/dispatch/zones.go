// Package dispatch holds the field-service business rules that sit next to
// scheduling: service-area zones, price estimation, job planning, and
// emergency triage.
package dispatch

import (
	"encoding/json"
	"strings"
)

type Zone struct {
	Name          string   `json:"name"`
	Zips          []string `json:"zips"`
	VisitFee      int      `json:"visit_fee"`
	AfterHoursFee int      `json:"after_hours_fee"`
	SLAHours      int      `json:"sla_hours"`
}

type ZoneMap map[string]Zone

func defaultZones() ZoneMap {
	return ZoneMap{
		"ZONE-A": {
			Name:          "Core",
			Zips:          []string{"94002", "94061", "94062", "94063", "94065", "94070", "94301", "94306", "94402", "94403"},
			VisitFee:      89,
			AfterHoursFee: 49,
			SLAHours:      24,
		},
		"ZONE-B": {
			Name:          "Extended",
			Zips:          []string{"94010", "94025", "94028", "94304", "94401", "94404"},
			VisitFee:      99,
			AfterHoursFee: 69,
			SLAHours:      48,
		},
	}
}

// ParseZones builds the zone map from a JSON override, falling back to the
// built-in map when the override is empty or malformed.
func ParseZones(raw string) ZoneMap {
	if raw == "" {
		return defaultZones()
	}
	var zm ZoneMap
	if err := json.Unmarshal([]byte(raw), &zm); err != nil || len(zm) == 0 {
		return defaultZones()
	}
	return zm
}

var spokenDigits = map[string]string{
	"zero": "0", "oh": "0",
	"one": "1",
	"two": "2", "to": "2", "too": "2",
	"three": "3",
	"four":  "4", "for": "4",
	"five":  "5",
	"six":   "6",
	"seven": "7",
	"eight": "8", "ate": "8",
	"nine": "9",
}

// NormalizeZip extracts a five-digit ZIP from free-form input, converting
// spoken digit words ("nine four zero oh two") along the way.
func NormalizeZip(input string) string {
	var digits strings.Builder
	for _, word := range strings.Fields(strings.ToLower(input)) {
		if d, ok := spokenDigits[word]; ok {
			digits.WriteString(d)
			continue
		}
		for _, r := range word {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
	}
	z := digits.String()
	if len(z) > 5 {
		z = z[:5]
	}
	return z
}

// FindZone locates the zone covering the (possibly spoken-form) ZIP.
func (zm ZoneMap) FindZone(zip string) (string, Zone, bool) {
	z := NormalizeZip(zip)
	for id, zone := range zm {
		for _, covered := range zone.Zips {
			if covered == z {
				return id, zone, true
			}
		}
	}
	return "", Zone{}, false
}

var zipToCity = map[string]string{
	"94002": "Belmont",
	"94010": "Burlingame",
	"94022": "Los Altos",
	"94024": "Los Altos",
	"94025": "Menlo Park",
	"94027": "Atherton",
	"94028": "Menlo Park",
	"94040": "Mountain View",
	"94043": "Mountain View",
	"94061": "Redwood City",
	"94062": "Redwood City",
	"94063": "Redwood City",
	"94065": "Redwood City",
	"94070": "San Carlos",
	"94085": "Sunnyvale",
	"94087": "Sunnyvale",
	"94301": "Palo Alto",
	"94303": "Palo Alto",
	"94304": "Palo Alto",
	"94305": "Stanford",
	"94306": "Palo Alto",
	"94401": "San Mateo",
	"94402": "San Mateo",
	"94403": "San Mateo",
	"94404": "San Mateo",
	"95008": "Campbell",
	"95014": "Cupertino",
	"95030": "Los Gatos",
	"95032": "Los Gatos",
	"95050": "Santa Clara",
	"95051": "Santa Clara",
	"95070": "Saratoga",
	"95110": "San Jose",
	"95112": "San Jose",
	"95125": "San Jose",
	"95129": "San Jose",
}

// CityForZip resolves a normalized ZIP to its city; unknown ZIPs report
// "Unknown" rather than failing, matching the soft contract of the intake
// flow.
func CityForZip(zip string) string {
	if city, ok := zipToCity[NormalizeZip(zip)]; ok {
		return city
	}
	return "Unknown"
}
