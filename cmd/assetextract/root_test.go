package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/openmined/assetextract/internal/assets"
	"github.com/openmined/assetextract/internal/config"
	"github.com/openmined/assetextract/internal/version"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	root string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets", "objects"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "assets", "indexes"), 0o755))
	return &fixture{root: root}
}

func (f *fixture) index(t *testing.T, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.root, "assets", "indexes", name), []byte(body), 0o644))
}

func (f *fixture) object(t *testing.T, hash, content string) {
	t.Helper()
	p := filepath.Join(f.root, "assets", "objects", hash[:2], hash)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	orig := configSearchPaths
	configSearchPaths = []string{t.TempDir()}
	t.Cleanup(func() { configSearchPaths = orig })

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestRoot_ListMode(t *testing.T) {
	f := newFixture(t)
	f.index(t, "1.0.json", `{"objects": {"old.txt": {"hash": "0000"}}}`)
	f.index(t, "1.10.json", `{"objects": {"z.txt": {"hash": "ff00"}, "a/b.txt": {"hash": "deadbeef"}}}`)
	f.index(t, "1.2.json", `{"objects": {}}`)

	out, _, err := execute(t, f.root, "--list")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef: a/b.txt\nff00: z.txt\n", out)
}

func TestRoot_CopyMode(t *testing.T) {
	f := newFixture(t)
	f.index(t, "1.json", `{"objects": {"a/b.txt": {"hash": "deadbeef", "size": 2}, "gone.txt": {"hash": "beef00"}}}`)
	f.object(t, "deadbeef", "hi")
	out := filepath.Join(t.TempDir(), "new", "out")

	_, stderr, err := execute(t, f.root, "-o", out)
	require.NoError(t, err)

	got, err := os.ReadFile(filepath.Join(out, "a", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got))
	assert.NoFileExists(t, filepath.Join(out, "gone.txt"))
	assert.Contains(t, stderr, "Can't find hash beef00")
}

func TestRoot_GlobAndRegex(t *testing.T) {
	f := newFixture(t)
	f.index(t, "5.json", `{"objects": {"sound/a.ogg": {"hash": "aa01"}, "sound/a.txt": {"hash": "aa02"}}}`)

	out, _, err := execute(t, f.root, "-l", "-g", "*.ogg")
	require.NoError(t, err)
	assert.Equal(t, "aa01: sound/a.ogg\n", out)

	out, _, err = execute(t, f.root, "-l", "-r", `sound/.*\.txt`)
	require.NoError(t, err)
	assert.Equal(t, "aa02: sound/a.txt\n", out)

	// full match: a prefix alone selects nothing
	out, stderr, err := execute(t, f.root, "-l", "-r", "sound")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Contains(t, stderr, "Zero items match the filter.")
}

func TestRoot_Exclude(t *testing.T) {
	f := newFixture(t)
	f.index(t, "5.json", `{"objects": {"sound/a.ogg": {"hash": "aa01"}, "sound/a.txt": {"hash": "aa02"}}}`)

	out, _, err := execute(t, f.root, "-l", "--exclude", "*.txt")
	require.NoError(t, err)
	assert.Equal(t, "aa01: sound/a.ogg\n", out)
}

func TestRoot_NamedTableAndFormat(t *testing.T) {
	f := newFixture(t)
	f.index(t, "legacy.json", `{"objects": {"x": {"hash": "ab12", "size": 3}}}`)

	out, _, err := execute(t, f.root, "-l", "-t", "legacy", "--format", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"path":"x","hash":"ab12","size":3}]`, out)
}

func TestRoot_FatalErrors(t *testing.T) {
	f := newFixture(t)
	f.index(t, "1.json", `{"objects": `)
	f.index(t, "schema.json", `{"files": {}}`)

	cases := []struct {
		name string
		args []string
		err  error
	}{
		{"missing-root", []string{filepath.Join(f.root, "nope"), "-l"}, assets.ErrNotFound},
		{"missing-table", []string{f.root, "-l", "-t", "9.9"}, assets.ErrNotFound},
		{"bad-json", []string{f.root, "-l"}, assets.ErrParse},
		{"bad-schema", []string{f.root, "-l", "-t", "schema"}, assets.ErrSchema},
		{"bad-regex", []string{f.root, "-l", "-r", "("}, config.ErrConfig},
		{"bad-format", []string{f.root, "-l", "--format", "xml"}, config.ErrConfig},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, _, err := execute(t, c.args...)
			require.ErrorIs(t, err, c.err)
		})
	}
}

func TestRoot_MutuallyExclusiveFlags(t *testing.T) {
	f := newFixture(t)
	f.index(t, "1.json", `{"objects": {}}`)

	for _, args := range [][]string{
		{f.root, "-l", "-o", "out"},
		{f.root, "-l", "-r", "a", "-g", "b"},
		{f.root, "-l", "-v", "-q"},
	} {
		_, _, err := execute(t, args...)
		assert.Error(t, err, args)
	}
}

func TestRoot_EnvAndConfigFile(t *testing.T) {
	f := newFixture(t)
	f.index(t, "1.json", `{"objects": {"a.ogg": {"hash": "aa01"}, "b.txt": {"hash": "bb02"}}}`)
	f.index(t, "2.json", `{"objects": {"c.ogg": {"hash": "cc03"}}}`)

	t.Setenv("ASSETEXTRACT_TABLE", "1")
	out, _, err := execute(t, f.root, "-l")
	require.NoError(t, err)
	assert.Equal(t, "aa01: a.ogg\nbb02: b.txt\n", out)

	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("glob: \"*.ogg\"\n"), 0o644))
	out, _, err = execute(t, f.root, "-l", "-c", cfgFile)
	require.NoError(t, err)
	assert.Equal(t, "aa01: a.ogg\n", out)

	// flags win over the environment
	out, _, err = execute(t, f.root, "-l", "-t", "2")
	require.NoError(t, err)
	assert.Equal(t, "cc03: c.ogg\n", out)
}

func TestRoot_MissingConfigFile(t *testing.T) {
	f := newFixture(t)
	_, _, err := execute(t, f.root, "-l", "-c", filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, config.ErrConfig)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version.DetailedWithApp()+"\n", out)
}
