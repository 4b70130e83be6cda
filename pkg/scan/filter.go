package scan

// Filter composes the name predicates. Empty lists disable the corresponding step.
type Filter struct {
	StartsWith []string `mapstructure:"starts_with" yaml:"starts_with"`
	EndsWith   []string `mapstructure:"ends_with"   yaml:"ends_with"`
	Contains   []string `mapstructure:"contains"    yaml:"contains"`
	Exclude    []string `mapstructure:"exclude"     yaml:"exclude"`
}

// Apply runs the keep steps in order (start, end, inside) and then drops
// names containing any Exclude pattern. Input order is preserved.
func (f Filter) Apply(names []string) []string {
	out := append([]string(nil), names...)

	if len(f.StartsWith) > 0 {
		out = KeepStart(out, f.StartsWith)
	}

	if len(f.EndsWith) > 0 {
		out = KeepEnd(out, f.EndsWith)
	}

	if len(f.Contains) > 0 {
		out = KeepInside(out, f.Contains)
	}

	if len(f.Exclude) > 0 {
		out = PruneInside(out, f.Exclude)
	}

	return out
}

// Scan lists root and applies the filter.
func (f Filter) Scan(root string) ([]string, error) {
	dirs, err := ListDirs(root)
	if err != nil {
		return nil, err
	}

	return f.Apply(dirs), nil
}
