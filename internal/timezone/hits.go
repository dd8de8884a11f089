package timezone

import (
	"fmt"
	"sort"
	"time"
)

// Target condition: local minute 20 at hour 4 or 16.
const (
	targetMinute = 20
	targetHour   = 4
)

// Hit describes one zone reaching 4:20 local time.
type Hit struct {
	Zone        string    // IANA zone identifier
	City        string    // display city derived from the zone name
	CountryHint string    // best-effort country for the announcement
	LocalDate   string    // local calendar date, YYYY-MM-DD
	DayKey      string    // dedup key: local date plus AM/PM marker
	Local       time.Time // local wall-clock time of the hit
}

// Occurrence is an upcoming 4:20 instant for one zone.
type Occurrence struct {
	Zone string
	At   time.Time // zone-local instant of the next 4:20
}

// DayKey builds the ledger key for a local time: the local calendar day plus
// which of the two daily occurrences this is, so 04:20 and 16:20 are
// distinct facts.
func DayKey(local time.Time) string {
	marker := "AM"
	if local.Hour() >= 12 {
		marker = "PM"
	}
	return fmt.Sprintf("%s-%s", local.Format("2006-01-02"), marker)
}

// Hits returns every zone whose local time matches the 4:20 condition at the
// given instant. Unresolvable zones are skipped.
func (c *Catalog) Hits(now time.Time) []Hit {
	var hits []Hit
	for _, zone := range c.zones {
		loc, err := c.Location(zone)
		if err != nil {
			continue
		}
		local := now.In(loc)
		if local.Minute() != targetMinute || local.Hour()%12 != targetHour {
			continue
		}
		city, country := parseZone(zone)
		hits = append(hits, Hit{
			Zone:        zone,
			City:        city,
			CountryHint: country,
			LocalDate:   local.Format("2006-01-02"),
			DayKey:      DayKey(local),
			Local:       local,
		})
	}
	return hits
}

// NextOccurrences returns the next 4:20 instant per zone, nearest first,
// truncated to limit. Candidates are today's 04:20 and 16:20 and tomorrow's
// 04:20 in each zone's local time.
func (c *Catalog) NextOccurrences(limit int, now time.Time) []Occurrence {
	occurrences := make([]Occurrence, 0, len(c.zones))
	for _, zone := range c.zones {
		loc, err := c.Location(zone)
		if err != nil {
			continue
		}
		local := now.In(loc)
		target := time.Date(local.Year(), local.Month(), local.Day(), targetHour, targetMinute, 0, 0, loc)
		for !target.After(local) {
			target = target.Add(12 * time.Hour)
		}
		occurrences = append(occurrences, Occurrence{Zone: zone, At: target})
	}
	sort.Slice(occurrences, func(i, j int) bool {
		return occurrences[i].At.Before(occurrences[j].At)
	})
	if limit > 0 && len(occurrences) > limit {
		occurrences = occurrences[:limit]
	}
	return occurrences
}
