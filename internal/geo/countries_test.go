package geo

import (
	"sort"
	"strings"
	"testing"
)

func TestResolve_KnownCountry(t *testing.T) {
	id, err := Resolve("GERMANY")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if id != "101282230" {
		t.Errorf("Resolve(GERMANY) = %q", id)
	}
}

func TestResolve_Normalization(t *testing.T) {
	for _, name := range []string{"united states", "United-States", " UNITED_STATES "} {
		id, err := Resolve(name)
		if err != nil {
			t.Fatalf("Resolve(%q): %v", name, err)
		}
		if id != "103644278" {
			t.Errorf("Resolve(%q) = %q", name, id)
		}
	}
}

func TestResolve_UnknownListsValid(t *testing.T) {
	_, err := Resolve("ATLANTIS")
	if err == nil {
		t.Fatal("Resolve: expected error")
	}
	if !strings.Contains(err.Error(), "GERMANY") {
		t.Errorf("error should list valid countries, got %q", err)
	}
}

func TestAll_SortedAndNonEmpty(t *testing.T) {
	names := All()
	if len(names) == 0 {
		t.Fatal("All returned no countries")
	}
	if !sort.StringsAreSorted(names) {
		t.Error("All should return sorted names")
	}
}
