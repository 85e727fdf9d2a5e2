package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTableCompiledInDefaults(t *testing.T) {
	tbl := NewTable()
	require.Equal(t, "1", tbl.String("Threads"))
	require.Equal(t, 256, tbl.Int("Hash"))
	require.False(t, tbl.Bool("Ponder"))
}

func TestSetIntRejectsOutOfRange(t *testing.T) {
	tbl := NewTable()
	require.Error(t, tbl.Set("Threads", "0"))
	require.Error(t, tbl.Set("Threads", "513"))
	require.NoError(t, tbl.Set("Threads", "64"))
	require.Equal(t, 64, tbl.Int("Threads"))
}

func TestSetBoolRejectsUnparsable(t *testing.T) {
	tbl := NewTable()
	require.Error(t, tbl.Set("Ponder", "yes"))
	require.NoError(t, tbl.Set("Ponder", "true"))
	require.True(t, tbl.Bool("Ponder"))
}

func TestSetUnknownOptionErrors(t *testing.T) {
	tbl := NewTable()
	require.Error(t, tbl.Set("Nonexistent", "1"))
}

func TestSetButtonClearsValue(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Set("Clear Hash", ""))
	require.Equal(t, "", tbl.String("Clear Hash"))
}

func TestSetComboRejectsValueOutsideVars(t *testing.T) {
	tbl := NewTable()
	tbl.opts["books"].Vars = []string{"a.bin", "b.bin"}
	require.Error(t, tbl.Set("Books", "c.bin"))
	require.NoError(t, tbl.Set("Books", "a.bin"))
	require.Equal(t, "a.bin", tbl.String("Books"))
}

func TestSetComboAcceptsAnyValueWhenVarsEmpty(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Set("Books", "whatever.bin"))
}

func TestOptionNamesAreCaseInsensitive(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.Set("threads", "10"))
	require.Equal(t, 10, tbl.Int("THREADS"))
}

func TestDiscoverPopulatesBooksFromDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "one.bin"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "two.BIN"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignore.txt"), []byte("x"), 0o644))

	tbl := NewTable()
	tbl.Discover(dir)

	require.ElementsMatch(t, []string{"one.bin", "two.BIN"}, tbl.opts["books"].Vars)
	require.Equal(t, "one.bin", tbl.String("Books"))
}

func TestLoadDefaultsMissingFileIsNotAnError(t *testing.T) {
	tbl := NewTable()
	require.NoError(t, tbl.LoadDefaults(filepath.Join(t.TempDir(), "missing.toml")))
}

func TestLoadDefaultsOverlaysCompiledDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "defaults.toml")
	contents := "[options]\nThreads = \"8\"\nHash = \"512\"\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	tbl := NewTable()
	require.NoError(t, tbl.LoadDefaults(path))
	require.Equal(t, 8, tbl.Int("Threads"))
	require.Equal(t, 512, tbl.Int("Hash"))
}

func TestLoadDefaultsRejectsMalformedToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("not valid [[[ toml"), 0o644))

	tbl := NewTable()
	require.Error(t, tbl.LoadDefaults(path))
}

func TestEachVisitsInRegistrationOrder(t *testing.T) {
	tbl := NewTable()
	var names []string
	tbl.Each(func(o Option) { names = append(names, o.Name) })
	require.Equal(t, "Threads", names[0])
	require.Equal(t, "Hash", names[1])
	require.Contains(t, names, "Move Overhead")
}

func TestLineRendersUCIOptionSyntax(t *testing.T) {
	spin := Option{Name: "Threads", Kind: KindInt, Default: "1", Min: 1, Max: 512}
	require.Equal(t, "option name Threads type spin default 1 min 1 max 512", spin.Line())

	check := Option{Name: "Ponder", Kind: KindBool, Default: "false"}
	require.Equal(t, "option name Ponder type check default false", check.Line())

	button := Option{Name: "Clear Hash", Kind: KindButton}
	require.Equal(t, "option name Clear Hash type button", button.Line())

	combo := Option{Name: "Books", Kind: KindCombo, Default: "a.bin", Vars: []string{"a.bin", "b.bin"}}
	require.Equal(t, "option name Books type combo default a.bin var a.bin var b.bin", combo.Line())
}
