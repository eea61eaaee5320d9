package batch

import "fmt"

// DefaultSceneDir is where view files are looked up unless configured
// otherwise.
const DefaultSceneDir = "data/scenes/"

// viewExtLen is the length of the extension cut from a view file name to
// obtain its short name (".view").
const viewExtLen = 5

// Variant is one combination of optimization-disabling flags together with
// the label embedded in its stats file name.
type Variant struct {
	Flags  string `yaml:"flags"`
	Suffix string `yaml:"suffix"`
}

// Config holds everything the generator needs for one run.
type Config struct {
	Executable      string
	StatsDir        string
	PrimInLeafCount int
	SceneDir        string
	Views           []string
	Variants        []Variant
}

// View is a view file after it has been read.
type View struct {
	File  string
	Name  string
	Flags string
}

// Command is one generated invocation of the benchmark executable.
type Command struct {
	Index     int
	View      string
	Variant   Variant
	StatsFile string
	Line      string
}

// Validate checks the fields the generator relies on. The leaf count and
// view names are passed through as given; a bad view name surfaces as a
// FileReadError when the view is read.
func (c Config) Validate() error {
	if c.Executable == "" {
		return &ConfigurationError{Field: "executable", Reason: "must not be empty"}
	}
	return nil
}

// PairVariants zips the legacy positional flag and suffix lists into
// variants. Lists of different length are rejected rather than truncated.
func PairVariants(flags, suffixes []string) ([]Variant, error) {
	if len(flags) != len(suffixes) {
		return nil, &ConfigurationError{
			Field:  "noOptimFlags",
			Reason: fmt.Sprintf("%d flag strings but %d file suffixes", len(flags), len(suffixes)),
		}
	}
	variants := make([]Variant, len(flags))
	for i := range flags {
		variants[i] = Variant{Flags: flags[i], Suffix: suffixes[i]}
	}
	return variants, nil
}

// ShortName drops the fixed-length extension from a view file name.
func ShortName(file string) string {
	if len(file) <= viewExtLen {
		return ""
	}
	return file[:len(file)-viewExtLen]
}

// StatsFile returns the stats path the executable writes for a view and
// variant suffix.
func StatsFile(dir, view, suffix string) string {
	return fmt.Sprintf("%s%s_%s.stats", dir, view, suffix)
}

// FormatLine renders a single command line. Fragments are inserted
// verbatim, so an empty fragment leaves a double or trailing space.
func FormatLine(executable, viewFlags string, primInLeaf int, statsFile, flags string) string {
	return fmt.Sprintf("%s %s -q -c %d -m %s %s", executable, viewFlags, primInLeaf, statsFile, flags)
}
