package domain

import (
	"sort"
	"strings"
)

const statesSeparator = ","

// USStates maps two-letter codes to names for the 50 states and DC.
var USStates = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas", "CA": "California",
	"CO": "Colorado", "CT": "Connecticut", "DE": "Delaware", "DC": "District of Columbia",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho", "IL": "Illinois",
	"IN": "Indiana", "IA": "Iowa", "KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana",
	"ME": "Maine", "MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
	"MS": "Mississippi", "MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma", "OR": "Oregon",
	"PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina", "SD": "South Dakota",
	"TN": "Tennessee", "TX": "Texas", "UT": "Utah", "VT": "Vermont", "VA": "Virginia",
	"WA": "Washington", "WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}

func IsUSState(code string) bool {
	_, ok := USStates[code]
	return ok
}

// JoinStates serialises a set of state codes, dropping duplicates and keeping
// first-seen order.
func JoinStates(states []string) string {
	seen := make(map[string]bool, len(states))
	out := make([]string, 0, len(states))
	for _, s := range states {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return strings.Join(out, statesSeparator)
}

// SplitStates is the inverse of JoinStates and tolerates stray blanks.
func SplitStates(stored string) []string {
	out := []string{}
	for _, s := range strings.Split(stored, statesSeparator) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// SortedStateCodes lists every code in USStates alphabetically.
func SortedStateCodes() []string {
	codes := make([]string, 0, len(USStates))
	for c := range USStates {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
