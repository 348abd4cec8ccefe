package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) string {
	t.Helper()

	var stdout, stderr bytes.Buffer
	err := run(args, &stdout, &stderr)
	require.NoError(t, err, "stderr: %s", stderr.String())

	return stdout.String()
}

func TestQueryAndTables(t *testing.T) {
	db := filepath.Join(t.TempDir(), "cli.db")
	flags := []string{"--source", "cli=" + db, "--dsn", "cli"}

	out := runCLI(t, append(flags, "query", "CREATE TABLE t (id INTEGER, n TEXT)")...)
	assert.Equal(t, "0 row(s) affected\n", out)

	out = runCLI(t, append(flags, "query", "INSERT INTO t (id, n) VALUES (?, ?)", "1", "hello")...)
	assert.Equal(t, "1 row(s) affected\n", out)

	runCLI(t, append(flags, "query", "INSERT INTO t (id, n) VALUES (?, ?)", "2", "NULL")...)

	out = runCLI(t, append(flags, "query", "SELECT id, n FROM t ORDER BY id")...)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"id", "n"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"1", "hello"}, strings.Fields(lines[1]))
	assert.Equal(t, []string{"2", "NULL"}, strings.Fields(lines[2]))

	out = runCLI(t, append(flags, "tables")...)
	assert.Equal(t, "t\n", out)
}

func TestDataSources(t *testing.T) {
	dir := t.TempDir()
	out := runCLI(t,
		"--source", "alpha="+filepath.Join(dir, "a.db"),
		"--source", "beta="+filepath.Join(dir, "b.db"),
		"datasources",
	)
	assert.Equal(t, "alpha\nbeta\n", out)
}

func TestProfileFile(t *testing.T) {
	dir := t.TempDir()
	config := filepath.Join(dir, "odbcq.yaml")
	yaml := "default: local\n" +
		"profiles:\n" +
		"  local:\n" +
		"    backend: sqlite\n" +
		"    dsn: main\n" +
		"    probe_size: 8\n" +
		"    sources:\n" +
		"      main: " + filepath.Join(dir, "main.db") + "\n"
	require.NoError(t, os.WriteFile(config, []byte(yaml), 0o600))

	runCLI(t, "--config", config, "query", "CREATE TABLE notes (body TEXT)")
	runCLI(t, "--config", config, "query", "INSERT INTO notes VALUES (?)", "longer than the eight byte probe")

	out := runCLI(t, "--config", config, "query", "SELECT body FROM notes")
	assert.Contains(t, out, "longer than the eight byte probe")

	f, err := LoadProfiles(config)
	require.NoError(t, err)
	p, err := f.Get("")
	require.NoError(t, err)
	assert.Equal(t, 8, p.ProbeSize)

	_, err = f.Get("missing")
	require.Error(t, err)
}

func TestErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run([]string{"--backend", "nope", "datasources"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown backend")

	err = run([]string{"tables"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data source")
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "odbcq "+version+"\n", runCLI(t, "version"))
}
