package settings

import (
	"sort"
	"strings"

	"github.com/conan-go/conancore/coreerrors"
)

// AnyValue is the universe sentinel meaning "any string is admissible",
// used by recipes that declare e.g. `"shared": ["True", "False"]` vs. a
// free-form option such as a version string.
const AnyValue = "ANY"

// OptionDef is one option a recipe declares: its admissible universe and
// its default value.
type OptionDef struct {
	Universe []string
	Default  string
}

func (d OptionDef) accepts(value string) bool {
	if len(d.Universe) == 0 {
		return true
	}
	for _, v := range d.Universe {
		if v == AnyValue || v == value {
			return true
		}
	}
	return false
}

// Options is one recipe's option set: its declarations plus the effective
// value of each (user_override ?? inherited ?? default, per spec §4.1).
type Options struct {
	defs      map[string]OptionDef
	overrides map[string]string
	inherited map[string]string
}

// NewOptions creates an Options instance for a recipe's declared option
// definitions.
func NewOptions(defs map[string]OptionDef) *Options {
	return &Options{
		defs:      defs,
		overrides: make(map[string]string),
		inherited: make(map[string]string),
	}
}

// SetOverride records a user- or parent-config()-imposed override, failing
// if the name is undeclared or the value is outside its universe.
func (o *Options) SetOverride(name, value string) error {
	def, ok := o.defs[name]
	if !ok {
		return coreerrors.UndefinedSettingError(name)
	}
	if !def.accepts(value) {
		return coreerrors.InvalidValueError(name, value, def.Universe)
	}
	o.overrides[name] = value
	return nil
}

// SetInherited records a default coming from an ancestor's config() hook,
// weaker than an explicit override but stronger than the recipe's own
// default.
func (o *Options) SetInherited(name, value string) error {
	def, ok := o.defs[name]
	if !ok {
		return coreerrors.UndefinedSettingError(name)
	}
	if !def.accepts(value) {
		return coreerrors.InvalidValueError(name, value, def.Universe)
	}
	o.inherited[name] = value
	return nil
}

// Get returns the effective value of name.
func (o *Options) Get(name string) string {
	if v, ok := o.overrides[name]; ok {
		return v
	}
	if v, ok := o.inherited[name]; ok {
		return v
	}
	return o.defs[name].Default
}

// Names returns the declared option names.
func (o *Options) Names() []string {
	names := make([]string, 0, len(o.defs))
	for n := range o.defs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Values returns the canonical serialized form of this recipe's own
// options: sorted "name=value" lines.
func (o *Options) Values() string {
	values := make(map[string]string, len(o.defs))
	for _, n := range o.Names() {
		values[n] = o.Get(n)
	}
	return serializeLines(values)
}

// OptionsValues is the multi-recipe options text as it appears on the
// command line or in default_options: lines of "pkg:opt=val", or bare
// "opt=val" meaning the current recipe.
type OptionsValues struct {
	perPackage map[string]map[string]string
}

// ParseOptionsValues parses OptionsValues.load(text) per spec §4.1.
func ParseOptionsValues(text string) (*OptionsValues, error) {
	ov := &OptionsValues{perPackage: make(map[string]map[string]string)}
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		pkg := ""
		rest := line
		if idx := strings.Index(line, ":"); idx != -1 {
			pkg = line[:idx]
			rest = line[idx+1:]
		}
		name, value, ok := strings.Cut(rest, "=")
		if !ok {
			return nil, coreerrors.ConfigurationError("malformed option line: %q", line)
		}
		if ov.perPackage[pkg] == nil {
			ov.perPackage[pkg] = make(map[string]string)
		}
		ov.perPackage[pkg][name] = value
	}
	return ov, nil
}

// ForPackage returns the name -> value overrides targeting pkg (or, if pkg
// is empty, the overrides that target "the current recipe").
func (ov *OptionsValues) ForPackage(pkg string) map[string]string {
	if ov == nil {
		return nil
	}
	return ov.perPackage[pkg]
}

// Packages returns the set of package names explicitly targeted (excluding
// the "current recipe" bucket keyed by "").
func (ov *OptionsValues) Packages() []string {
	if ov == nil {
		return nil
	}
	names := make([]string, 0, len(ov.perPackage))
	for pkg := range ov.perPackage {
		if pkg != "" {
			names = append(names, pkg)
		}
	}
	sort.Strings(names)
	return names
}
