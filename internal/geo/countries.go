// Package geo maps country names to the region identifiers the job search
// understands. The catalog ships embedded so runs never depend on a lookup
// service for something this static.
package geo

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed countries.yaml
var countriesRaw []byte

var catalog = mustLoadCatalog()

type rawCatalog struct {
	Countries map[string]string `yaml:"countries"`
}

// mustLoadCatalog parses the embedded catalog once at package init.
func mustLoadCatalog() map[string]string {
	var raw rawCatalog
	if err := yaml.Unmarshal(countriesRaw, &raw); err != nil {
		panic(fmt.Sprintf("geo: parse embedded catalog: %v", err))
	}
	if len(raw.Countries) == 0 {
		panic("geo: embedded catalog is empty")
	}
	return raw.Countries
}

// Resolve returns the region id for a country name (case-insensitive,
// spaces and hyphens tolerated). Unknown names error with the valid set.
func Resolve(name string) (string, error) {
	key := normalize(name)
	if id, ok := catalog[key]; ok {
		return id, nil
	}
	return "", fmt.Errorf("unknown country %q (valid: %s)", name, strings.Join(All(), ", "))
}

// All returns every known country name in deterministic order.
func All() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func normalize(name string) string {
	key := strings.ToUpper(strings.TrimSpace(name))
	key = strings.ReplaceAll(key, " ", "_")
	key = strings.ReplaceAll(key, "-", "_")
	return key
}
