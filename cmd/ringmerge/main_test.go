package main

import (
	"bytes"
	"errors"
	"flag"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/growthrings/internal/fsutil"
	"github.com/banshee-data/growthrings/internal/rings/debug"
	"github.com/banshee-data/growthrings/internal/testutil"
)

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-version"}, &stdout, &stderr, fsutil.NewMemoryFileSystem()))
	assert.True(t, strings.HasPrefix(stdout.String(), "ringmerge dev"))
}

func TestRun_Summary(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-nr", "180", "-rings", "3", "-check"}, &stdout, &stderr, fsutil.NewMemoryFileSystem())
	require.NoError(t, err)

	out := stdout.String()
	assert.Contains(t, out, "pass")
	assert.Contains(t, out, "complete rings")
	// header plus nine passes plus the totals line
	assert.Equal(t, 11, strings.Count(out, "\n"))
}

func TestRun_ConfigFile(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	require.NoError(t, fs.WriteFile("tuning.json", []byte(`{"closing_threshold": 1}`), 0o644))

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-config", "tuning.json", "-nr", "90", "-rings", "2"}, &stdout, &stderr, fs))

	require.NoError(t, fs.WriteFile("bad.json", []byte(`{"closing_threshold": 2}`), 0o644))
	err := run([]string{"-config", "bad.json"}, &stdout, &stderr, fs)
	testutil.AssertError(t, err)
	assert.Contains(t, err.Error(), "closing_threshold")
}

func TestRun_DebugOutput(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	var stdout, stderr bytes.Buffer
	err := run([]string{"-nr", "72", "-rings", "1", "-cuts", "2", "-debug", "-out", "dbg"}, &stdout, &stderr, fs)
	require.NoError(t, err)

	dirs := fs.Dirs("dbg")
	require.Len(t, dirs, 1)
	files, err := fs.List(dirs[0])
	require.NoError(t, err)
	assert.Contains(t, files, debug.ReportFile)
	assert.Contains(t, stdout.String(), "debug output: "+dirs[0])
}

func TestParseFlags_Errors(t *testing.T) {
	var stderr bytes.Buffer
	_, err := parseFlags([]string{"-nr", "2"}, &stderr)
	assert.Error(t, err)

	_, err = parseFlags([]string{"-rings", "-1"}, &stderr)
	assert.Error(t, err)

	_, err = parseFlags([]string{"-h"}, &stderr)
	assert.True(t, errors.Is(err, flag.ErrHelp))
}
