package schema

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"happydash/domain/happiness"
	"happydash/internal/errors"

	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var builtinProfiles []byte

const (
	ProfileCSV   = "whr-csv"
	ProfileSheet = "whr-sheet"
)

// CountryField is the only non-numeric field a profile maps
const CountryField = "country"

// Match selects how source columns are located
type Match string

const (
	ByName     Match = "name"
	ByPosition Match = "position"
)

// Field maps one observation field onto a source column
type Field struct {
	Column   string   `yaml:"column"`
	Headers  []string `yaml:"headers"`
	Position int      `yaml:"position"`
	Required bool     `yaml:"required"`
}

// Profile describes the column layout of one source format
type Profile struct {
	Name         string  `yaml:"name"`
	Description  string  `yaml:"description"`
	By           Match   `yaml:"by"`
	DecimalComma bool    `yaml:"decimal_comma"`
	Fields       []Field `yaml:"fields"`
}

type profileFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// Registry holds profiles by name
type Registry struct {
	profiles map[string]Profile
}

// DefaultRegistry returns the built-in profiles
func DefaultRegistry() *Registry {
	r := &Registry{profiles: make(map[string]Profile)}
	if err := r.Add(builtinProfiles); err != nil {
		panic(fmt.Sprintf("schema: built-in profiles are invalid: %v", err))
	}
	return r
}

// LoadRegistry returns the built-in profiles plus the ones defined in path.
// Profiles in path replace built-ins of the same name.
func LoadRegistry(path string) (*Registry, error) {
	r := DefaultRegistry()
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read schema file %s", path)
	}
	if err := r.Add(data); err != nil {
		return nil, errors.Wrapf(err, "invalid schema file %s", path)
	}
	return r, nil
}

// Add parses a YAML profile document and registers every profile in it
func (r *Registry) Add(data []byte) error {
	var file profileFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return errors.ConfigInvalid(fmt.Sprintf("failed to parse profiles: %v", err))
	}
	for _, p := range file.Profiles {
		if err := p.Validate(); err != nil {
			return err
		}
		r.profiles[p.Name] = p
	}
	return nil
}

// Get returns the named profile
func (r *Registry) Get(name string) (Profile, error) {
	p, ok := r.profiles[name]
	if !ok {
		return Profile{}, errors.NotFound(fmt.Sprintf("schema profile %q", name))
	}
	return p, nil
}

// Names returns the registered profile names, sorted
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.profiles))
	for name := range r.profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that the profile can be applied
func (p Profile) Validate() error {
	if p.Name == "" {
		return errors.ConfigInvalid("schema profile without a name")
	}
	if p.By != ByName && p.By != ByPosition {
		return errors.ConfigInvalid(fmt.Sprintf("profile %s: by must be %q or %q", p.Name, ByName, ByPosition))
	}

	known := map[string]bool{CountryField: true}
	for _, c := range happiness.NumericColumns() {
		known[string(c)] = true
	}

	seen := make(map[string]bool)
	for _, f := range p.Fields {
		if !known[f.Column] {
			return errors.ConfigInvalid(fmt.Sprintf("profile %s: unknown column %q", p.Name, f.Column))
		}
		if seen[f.Column] {
			return errors.ConfigInvalid(fmt.Sprintf("profile %s: column %q mapped twice", p.Name, f.Column))
		}
		seen[f.Column] = true
		if p.By == ByName && len(f.Headers) == 0 {
			return errors.ConfigInvalid(fmt.Sprintf("profile %s: column %q has no headers", p.Name, f.Column))
		}
		if p.By == ByPosition && f.Position < 0 {
			return errors.ConfigInvalid(fmt.Sprintf("profile %s: column %q has a negative position", p.Name, f.Column))
		}
	}
	for _, required := range []string{CountryField, string(happiness.ColYear)} {
		if !seen[required] {
			return errors.ConfigInvalid(fmt.Sprintf("profile %s: %s column is not mapped", p.Name, required))
		}
	}
	return nil
}
