// Package config implements the UCI option table of spec 6 plus a
// TOML-backed default file read at startup, grounded on the teacher's own
// Options struct/setoption dispatch (interface.go) and on the pack's
// declared github.com/BurntSushi/toml dependency for the on-disk defaults
// layer the teacher itself never had.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Kind identifies a UCI option's declared type, for `uci`'s option-line
// output and setoption's value parsing.
type Kind int

const (
	KindInt Kind = iota
	KindBool
	KindButton
	KindCombo
	KindString
)

// Option is one registered UCI option, per spec 6's table.
type Option struct {
	Name    string
	Kind    Kind
	Default string
	Min     int
	Max     int
	Vars    []string // legal combo values

	value string
}

// fileDefaults is the shape of an optional TOML defaults file: a table of
// option-name to string value, overriding the compiled-in defaults below
// (but never a live `setoption`, which always wins last).
type fileDefaults struct {
	Options map[string]string `toml:"options"`
}

// Table is the live set of registered options and their current values.
type Table struct {
	order []string
	opts  map[string]*Option
}

// NewTable builds the option table of spec 6 with its compiled-in defaults.
func NewTable() *Table {
	t := &Table{opts: make(map[string]*Option)}
	defs := []Option{
		{Name: "Threads", Kind: KindInt, Default: "1", Min: 1, Max: 512},
		{Name: "Hash", Kind: KindInt, Default: "256", Min: 1, Max: 131072},
		{Name: "Hash * Threads", Kind: KindBool, Default: "true"},
		{Name: "Clear Hash", Kind: KindButton},
		{Name: "Clear hash on new game", Kind: KindBool, Default: "false"},
		{Name: "Ponder", Kind: KindBool, Default: "false"},
		{Name: "UCI_Chess960", Kind: KindBool, Default: "false"},
		{Name: "Show CPU usage", Kind: KindBool, Default: "false"},
		{Name: "Use book", Kind: KindBool, Default: "false"},
		{Name: "Books", Kind: KindCombo, Default: "", Vars: []string{}},
		{Name: "Best Book Move", Kind: KindBool, Default: "false"},
		{Name: "Contempt", Kind: KindInt, Default: "0", Min: -100, Max: 100},
		{Name: "Move Overhead", Kind: KindInt, Default: "30", Min: 0, Max: 5000},
	}
	for i := range defs {
		o := defs[i]
		o.value = o.Default
		t.opts[strings.ToLower(o.Name)] = &o
		t.order = append(t.order, o.Name)
	}
	return t
}

// LoadDefaults overlays a TOML defaults file onto the table's compiled-in
// values. A missing file is not an error; a malformed one is.
func (t *Table) LoadDefaults(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	var fd fileDefaults
	if _, err := toml.DecodeFile(path, &fd); err != nil {
		return fmt.Errorf("config: decode %s: %w", path, err)
	}
	for name, v := range fd.Options {
		if o, ok := t.opts[strings.ToLower(name)]; ok {
			o.value = v
		}
	}
	return nil
}

// Discover populates the Books combo's enumerated values from the .bin
// files found in dir, per spec 6's "Books: enumeration of discovered book
// files".
func (t *Table) Discover(dir string) {
	o, ok := t.opts["books"]
	if !ok {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	var found []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".bin") {
			found = append(found, e.Name())
		}
	}
	o.Vars = found
	if o.value == "" && len(found) > 0 {
		o.value = found[0]
	}
}

// Set applies a setoption name/value pair, per spec 6/7's InvalidOption
// handling: an unknown name or an out-of-range value is reported but
// leaves the table unchanged.
func (t *Table) Set(name, value string) error {
	o, ok := t.opts[strings.ToLower(name)]
	if !ok {
		return fmt.Errorf("unknown option %q", name)
	}
	switch o.Kind {
	case KindButton:
		o.value = ""
		return nil
	case KindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("option %q: %w", name, err)
		}
		if n < o.Min || n > o.Max {
			return fmt.Errorf("option %q: %d out of range [%d,%d]", name, n, o.Min, o.Max)
		}
	case KindBool:
		if _, err := strconv.ParseBool(value); err != nil {
			return fmt.Errorf("option %q: %w", name, err)
		}
	case KindCombo:
		if len(o.Vars) > 0 {
			valid := false
			for _, v := range o.Vars {
				if v == value {
					valid = true
					break
				}
			}
			if !valid {
				return fmt.Errorf("option %q: %q not a legal value", name, value)
			}
		}
	}
	o.value = value
	return nil
}

// String returns an option's current value, "" if unregistered.
func (t *Table) String(name string) string {
	if o, ok := t.opts[strings.ToLower(name)]; ok {
		return o.value
	}
	return ""
}

// Int returns an option's current value parsed as an int, 0 if unset or
// unparsable.
func (t *Table) Int(name string) int {
	n, _ := strconv.Atoi(t.String(name))
	return n
}

// Bool returns an option's current value parsed as a bool.
func (t *Table) Bool(name string) bool {
	v, _ := strconv.ParseBool(t.String(name))
	return v
}

// Each visits every registered option in registration order, for `uci`'s
// option-line emission.
func (t *Table) Each(fn func(Option)) {
	for _, name := range t.order {
		fn(*t.opts[strings.ToLower(name)])
	}
}

// Line renders one `option name ... type ...` UCI output line for o.
func (o Option) Line() string {
	switch o.Kind {
	case KindInt:
		return fmt.Sprintf("option name %s type spin default %s min %d max %d", o.Name, o.Default, o.Min, o.Max)
	case KindBool:
		return fmt.Sprintf("option name %s type check default %s", o.Name, o.Default)
	case KindButton:
		return fmt.Sprintf("option name %s type button", o.Name)
	case KindCombo:
		s := fmt.Sprintf("option name %s type combo default %s", o.Name, o.Default)
		for _, v := range o.Vars {
			s += " var " + v
		}
		return s
	default:
		return fmt.Sprintf("option name %s type string default %s", o.Name, o.Default)
	}
}
