// Package elementmap supplies the per-element-type metadata the alignment
// passes consult: flow codes describing which output ports carry data from
// which input ports, one-letter flags (flag 'A' marks a type whose
// correctness depends on input alignment), and the drivers each type runs
// under. The table is loaded from a YAML file; unknown types get zero
// traits and the passes degrade to defaults.
package elementmap

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jackzhao-mj/click/graph"
)

// Drivers a configuration can target.
const (
	Userlevel = iota
	LinuxModule
	BSDModule
	NDrivers
)

// DriverName returns the driver's canonical name.
func DriverName(d int) string {
	switch d {
	case Userlevel:
		return "userlevel"
	case LinuxModule:
		return "linuxmodule"
	case BSDModule:
		return "bsdmodule"
	}
	return "unknown"
}

// ParseDriver resolves a driver name; ok is false for unknown names.
func ParseDriver(name string) (int, bool) {
	for d := 0; d < NDrivers; d++ {
		if DriverName(d) == name {
			return d, true
		}
	}
	return -1, false
}

// Traits is one type's metadata. The zero value means "nothing known":
// empty flow code, no flags, compatible with every driver.
type Traits struct {
	Name     string   `yaml:"name"`
	FlowCode string   `yaml:"flow_code"`
	Flags    string   `yaml:"flags"`
	Drivers  []string `yaml:"drivers"`
}

// FlagValue returns the integer attached to a one-letter flag in the flags
// string ("A" yields 1, "A2" yields 2), or -1 if the flag is absent.
func (t Traits) FlagValue(flag byte) int {
	s := t.Flags
	for i := 0; i < len(s); i++ {
		if s[i] != flag {
			continue
		}
		v, digits := 0, 0
		for i+1+digits < len(s) && s[i+1+digits] >= '0' && s[i+1+digits] <= '9' {
			v = v*10 + int(s[i+1+digits]-'0')
			digits++
		}
		if digits == 0 {
			return 1
		}
		return v
	}
	return -1
}

// DriverCompatible reports whether the type runs under driver d. An empty
// driver list means the type is available everywhere.
func (t Traits) DriverCompatible(d int) bool {
	if len(t.Drivers) == 0 {
		return true
	}
	name := DriverName(d)
	for _, dn := range t.Drivers {
		if dn == name {
			return true
		}
	}
	return false
}

// ElementMap is the full metadata table, keyed by type name.
type ElementMap struct {
	byName map[string]Traits
}

// New returns an empty table.
func New() *ElementMap {
	return &ElementMap{byName: make(map[string]Traits)}
}

type mapFile struct {
	Elements []Traits `yaml:"elements"`
}

// Parse reads a YAML metadata table.
func Parse(data []byte) (*ElementMap, error) {
	var f mapFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("elementmap: %w", err)
	}
	em := New()
	for _, t := range f.Elements {
		if t.Name == "" {
			return nil, fmt.Errorf("elementmap: entry without a name")
		}
		em.Add(t)
	}
	return em, nil
}

// Load reads a YAML metadata table from a file.
func Load(path string) (*ElementMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("elementmap: %w", err)
	}
	return Parse(data)
}

// Add inserts or replaces a type's traits.
func (em *ElementMap) Add(t Traits) { em.byName[t.Name] = t }

// HasTraits reports whether the table has an entry for the type.
func (em *ElementMap) HasTraits(name string) bool {
	_, ok := em.byName[name]
	return ok
}

// Traits returns the type's metadata, or zero Traits when unknown.
func (em *ElementMap) Traits(name string) Traits { return em.byName[name] }

// FlagValue is shorthand for Traits(name).FlagValue(flag).
func (em *ElementMap) FlagValue(name string, flag byte) int {
	return em.byName[name].FlagValue(flag)
}

// AddDefaultAlignmentFlags marks the types known to depend on input
// alignment. Used when the loaded table carries no alignment information at
// all, so the annotation pass still has something to report.
func (em *ElementMap) AddDefaultAlignmentFlags() {
	classes := []string{
		"Classifier", "IPClassifier", "IPFilter",
		"CheckIPHeader", "CheckIPHeader2", "UDPIPEncap", "IPInputCombo",
	}
	for _, name := range classes {
		t := em.Traits(name)
		t.Name = name
		if t.FlagValue('A') <= 0 {
			t.Flags += "A"
		}
		em.Add(t)
	}
}

// DriverCompatible reports whether every element type used in the graph runs
// under driver d.
func (em *ElementMap) DriverCompatible(r *graph.Router, d int) bool {
	for _, e := range r.Elements() {
		if e.Dead() {
			continue
		}
		if !em.Traits(e.Type).DriverCompatible(d) {
			return false
		}
	}
	return true
}
