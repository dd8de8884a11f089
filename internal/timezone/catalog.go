// Package timezone enumerates IANA zones and resolves their local wall-clock
// time for the global 4:20 trigger.
package timezone

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // embedded zone database so LoadLocation works everywhere
)

// Directories searched for the system zone database when no explicit scan
// list is configured.
var zoneinfoDirs = []string{
	"/usr/share/zoneinfo",
	"/usr/share/lib/zoneinfo",
	"/usr/lib/locale/TZ",
}

// fallbackZones is used when no system zone database can be enumerated.
var fallbackZones = []string{
	"UTC",
	"Europe/London",
	"Europe/Paris",
	"Asia/Tokyo",
	"America/New_York",
	"America/Chicago",
	"America/Denver",
	"America/Los_Angeles",
	"Australia/Sydney",
}

// Catalog holds the zone scan list and a cache of resolved locations. Zones
// are fixed at construction; the location cache fills lazily.
type Catalog struct {
	zones     []string
	mu        sync.RWMutex
	locations map[string]*time.Location
}

// NewCatalog builds a catalog from an explicit zone list. An empty list
// enumerates the system zone database, falling back to a small static list.
func NewCatalog(zones []string) *Catalog {
	if len(zones) == 0 {
		zones = discoverZones()
	}
	return &Catalog{
		zones:     zones,
		locations: make(map[string]*time.Location),
	}
}

// Zones returns the catalog's scan list.
func (c *Catalog) Zones() []string {
	return c.zones
}

// Location resolves a zone identifier to its *time.Location, caching the
// result. Unknown zones return the LoadLocation error.
func (c *Catalog) Location(zone string) (*time.Location, error) {
	c.mu.RLock()
	loc, ok := c.locations[zone]
	c.mu.RUnlock()
	if ok {
		return loc, nil
	}

	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.locations[zone] = loc
	c.mu.Unlock()
	return loc, nil
}

// discoverZones walks the first readable zoneinfo directory and collects
// every valid zone name under it.
func discoverZones() []string {
	for _, dir := range zoneinfoDirs {
		zones := walkZoneinfo(dir)
		if len(zones) > 0 {
			return zones
		}
	}
	return fallbackZones
}

func walkZoneinfo(dir string) []string {
	var zones []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil //nolint:nilerr // skip unreadable entries, keep walking
		}
		if d.IsDir() {
			// Skip the right/ and posix/ duplicate trees.
			base := d.Name()
			if base == "right" || base == "posix" {
				return filepath.SkipDir
			}
			return nil
		}
		name, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil //nolint:nilerr
		}
		if !isZoneName(name) {
			return nil
		}
		zones = append(zones, name)
		return nil
	})
	if err != nil {
		return nil
	}
	sort.Strings(zones)
	return zones
}

// isZoneName filters out tab files, leap-second data and other non-zone
// entries; real zone names start each segment with an uppercase letter.
func isZoneName(name string) bool {
	if strings.HasSuffix(name, ".tab") || strings.HasSuffix(name, ".list") {
		return false
	}
	first := name[0]
	return first >= 'A' && first <= 'Z'
}
