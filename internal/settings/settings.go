// Package settings loads the optional project settings file:
// `rasp.toml` holds the same knobs the CLI flags set, so a project can
// check in defaults; flags given on the command line override whatever
// the file says.
package settings

import (
	"os"

	"github.com/BurntSushi/toml"
)

// Settings holds every knob rasp.toml may set. Zero value means
// "unset"; the CLI only overrides a Settings field with a flag value
// when that flag was actually given, via Merge below.
type Settings struct {
	Trace             bool `toml:"trace"`
	PrintAST          bool `toml:"print_ast"`
	PrintInstructions bool `toml:"print_instructions"`
}

// Load reads and decodes path. A missing file is not an error — it
// means "no project settings", and the caller proceeds with whatever
// flags were given on the command line.
func Load(path string) (Settings, error) {
	var s Settings
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return s, nil
	}
	_, err := toml.DecodeFile(path, &s)
	return s, err
}

// Merge layers flag-derived overrides on top of file-derived
// defaults: any field true in overrides wins, since the CLI never
// needs to un-set something the file turned on other than by the user
// passing no flags at all (in which case overrides is the zero
// value and every field here is simply s's own).
func (s Settings) Merge(overrides Settings) Settings {
	return Settings{
		Trace:             s.Trace || overrides.Trace,
		PrintAST:          s.PrintAST || overrides.PrintAST,
		PrintInstructions: s.PrintInstructions || overrides.PrintInstructions,
	}
}
