package engine

import (
	"sort"
	"strings"
)

// UnassignedStation groups runners whose station field is blank.
const UnassignedStation = "Unassigned"

// StationTable maps free-text station strings onto canonical station names.
// The zero value passes every station through unchanged.
type StationTable struct {
	lookup map[string]string
}

// NewStationTable builds the lookup from canonical name -> accepted aliases.
// Matching ignores case and repeated whitespace. When an alias is listed
// under two canonical names the alphabetically first canonical name wins.
func NewStationTable(aliases map[string][]string) StationTable {
	canonical := make([]string, 0, len(aliases))
	for name := range aliases {
		canonical = append(canonical, name)
	}
	sort.Strings(canonical)

	lookup := make(map[string]string, len(aliases)*2)
	for _, name := range canonical {
		clean := strings.Join(strings.Fields(name), " ")
		if clean == "" {
			continue
		}
		if _, taken := lookup[stationKey(clean)]; !taken {
			lookup[stationKey(clean)] = clean
		}
		for _, alias := range aliases[name] {
			key := stationKey(alias)
			if key == "" {
				continue
			}
			if _, taken := lookup[key]; taken {
				continue
			}
			lookup[key] = clean
		}
	}

	return StationTable{lookup: lookup}
}

// Canonical returns the canonical station for raw, or raw with its
// whitespace tidied when no alias matches.
func (t StationTable) Canonical(raw string) string {
	clean := strings.Join(strings.Fields(raw), " ")
	if clean == "" {
		return UnassignedStation
	}
	if name, ok := t.lookup[stationKey(clean)]; ok {
		return name
	}
	return clean
}

func stationKey(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
