package cmd

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/notargets/stlview/ctxlog"
	"github.com/notargets/stlview/geometry"
	"github.com/notargets/stlview/readfiles"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags undoes flag values left behind by an earlier run in this process
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	ctx := ctxlog.WithLogger(context.Background(), slog.New(slog.DiscardHandler))
	err := rootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func writeFixtures(t *testing.T) (dir string) {
	dir = t.TempDir()
	files := map[string][]byte{
		"pyramid.stl": readfiles.BinarySTL("pyramid", readfiles.PyramidFacets()),
		"odd.stl":     readfiles.BinarySTL("odd", readfiles.NumberedFacets(9)),
		"ascii.stl":   []byte("solid cube\nendsolid cube\n"),
	}
	full := files["pyramid.stl"]
	files["short.stl"] = full[:len(full)-1]
	for name, data := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
	}
	return
}

func TestParseCmd(t *testing.T) {
	dir := writeFixtures(t)
	out, err := run(t, "parse", "-w", "4", filepath.Join(dir, "pyramid.stl"), filepath.Join(dir, "odd.stl"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, filepath.Join(dir, "pyramid.stl")+"\t4 facets", lines[0])
	assert.Equal(t, filepath.Join(dir, "odd.stl")+"\t9 facets", lines[1])
}

func TestParseCmd_Failures(t *testing.T) {
	dir := writeFixtures(t)
	out, err := run(t, "parse", "-j", "3",
		filepath.Join(dir, "ascii.stl"), filepath.Join(dir, "short.stl"), filepath.Join(dir, "pyramid.stl"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 3 files failed")
	assert.Contains(t, out, "ASCII STL is not supported")
	assert.Contains(t, out, "corrupt or truncated STL file")
	assert.Contains(t, out, "pyramid.stl\t4 facets")

	_, err = run(t, "parse")
	assert.ErrorContains(t, err, "must supply STL files")
}

func TestParseCmd_JobFile(t *testing.T) {
	dir := writeFixtures(t)
	job := []byte(`
Title: fixtures
Files: [pyramid.stl, odd.stl]
Workers: 2
Jobs: 2
ExportDir: geom
`)
	jobPath := filepath.Join(dir, "job.yaml")
	require.NoError(t, os.WriteFile(jobPath, job, 0o644))
	out, err := run(t, "parse", "-I", jobPath)
	require.NoError(t, err)
	assert.Contains(t, out, "odd.stl\t9 facets")
	assert.NotContains(t, out, "= Title")

	out, err = run(t, "parse", "-l", "debug", "-I", jobPath)
	require.NoError(t, err)
	assert.Contains(t, out, "\"fixtures\"\t\t= Title")
	assert.Contains(t, out, "[2]\t\t\t= Jobs")

	file, err := os.Open(filepath.Join(dir, "geom", "pyramid.geom"))
	require.NoError(t, err)
	defer file.Close()
	b, err := geometry.ReadBuffers(file)
	require.NoError(t, err)
	assert.Equal(t, 12, b.NumVertices())
	assert.Len(t, b.Indices, 12)
}

func TestInfoCmd(t *testing.T) {
	dir := writeFixtures(t)
	out, err := run(t, "info", "--yaml", filepath.Join(dir, "pyramid.stl"))
	require.NoError(t, err)
	assert.Contains(t, out, "Name: pyramid.stl")
	assert.Contains(t, out, "Facets: 4")
	assert.Contains(t, out, "FlippedNormals: 0")

	out, err = run(t, "info", filepath.Join(dir, "odd.stl"))
	require.NoError(t, err)
	assert.Contains(t, out, "9\t\t= Facets")

	_, err = run(t, "info", filepath.Join(dir, "missing.stl"))
	assert.ErrorContains(t, err, "not an STL file")
}

func TestExportCmd(t *testing.T) {
	dir := writeFixtures(t)
	target := filepath.Join(dir, "out", "odd.geom")
	out, err := run(t, "export", "-o", target, filepath.Join(dir, "odd.stl"))
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 27 vertices")
	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Equal(t, int64(8+4*9*18+8+4*27), info.Size())
}

func TestRootCmd_BadSettings(t *testing.T) {
	dir := writeFixtures(t)
	_, err := run(t, "parse", "--logLevel", "chatty", filepath.Join(dir, "pyramid.stl"))
	assert.ErrorContains(t, err, "invalid log level")
	_, err = run(t, "parse", "--profile", "gpu", filepath.Join(dir, "pyramid.stl"))
	assert.ErrorContains(t, err, "unknown profile mode")
}
