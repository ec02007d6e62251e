// Package catalog holds the fixed branch and channel enumerations that every
// uploaded row is resolved against, together with their translated labels and
// the header synonyms used to locate columns.
//
// A Catalog is plain configuration: it is built once at startup (either the
// built-in Default or a YAML file) and injected into the ingest package.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Member is one canonical branch or channel name and its label in the
// secondary language.
type Member struct {
	Name  string `yaml:"name" json:"name"`
	Label string `yaml:"label" json:"label"`
}

// Catalog is the ordered set of canonical members. Order matters: matching
// always walks members in the order they appear here.
type Catalog struct {
	Branches []Member `yaml:"branches" json:"branches"`
	Channels []Member `yaml:"channels" json:"channels"`

	// Headers overrides the synonym tokens for individual fields
	// ("date", "branch", "channel", "sales", "orders", "target").
	// Fields not listed keep their default tokens.
	Headers map[string][]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// Default returns the built-in catalog: four branches, four channels and
// their Arabic labels.
func Default() Catalog {
	return Catalog{
		Branches: []Member{
			{Name: "Dark Store", Label: "دارك ستور"},
			{Name: "Maadi", Label: "المعادي"},
			{Name: "Masr El Gededa", Label: "مصر الجديدة"},
			{Name: "Tagamo3", Label: "التجمع"},
		},
		Channels: []Member{
			{Name: "Talabat", Label: "طلبات"},
			{Name: "Instashop", Label: "انستاشوب"},
			{Name: "Call Center", Label: "كول سنتر"},
			{Name: "Website & App", Label: "الموقع والتطبيق"},
		},
	}
}

// Load reads a catalog from a YAML file. An empty path returns Default.
func Load(path string) (Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

// Validate checks that both sets are non-empty and that no name or label
// appears twice within a set.
func (c Catalog) Validate() error {
	var errs []error

	if len(c.Branches) == 0 {
		errs = append(errs, errors.New("catalog has no branches"))
	}
	if len(c.Channels) == 0 {
		errs = append(errs, errors.New("catalog has no channels"))
	}

	errs = append(errs, validateSet("branch", c.Branches)...)
	errs = append(errs, validateSet("channel", c.Channels)...)

	for field := range c.Headers {
		if !knownHeaderField(field) {
			errs = append(errs, fmt.Errorf("unknown header field %q", field))
		}
	}

	return errors.Join(errs...)
}

func validateSet(kind string, members []Member) []error {
	var errs []error
	seen := make(map[string]bool, len(members)*2)

	for i, m := range members {
		name := strings.TrimSpace(m.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("%s %d has an empty name", kind, i+1))
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			errs = append(errs, fmt.Errorf("duplicate %s %q", kind, name))
		}
		seen[key] = true

		if label := strings.TrimSpace(m.Label); label != "" {
			lk := strings.ToLower(label)
			if seen[lk] && lk != key {
				errs = append(errs, fmt.Errorf("duplicate %s label %q", kind, label))
			}
			seen[lk] = true
		}
	}
	return errs
}

func knownHeaderField(field string) bool {
	switch field {
	case "date", "branch", "channel", "sales", "orders", "target":
		return true
	}
	return false
}

// BranchNames returns the canonical branch names in order.
func (c Catalog) BranchNames() []string {
	return names(c.Branches)
}

// ChannelNames returns the canonical channel names in order.
func (c Catalog) ChannelNames() []string {
	return names(c.Channels)
}

func names(members []Member) []string {
	out := make([]string, len(members))
	for i, m := range members {
		out[i] = m.Name
	}
	return out
}
