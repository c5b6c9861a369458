package cmd

import (
	"bytes"
	"runtime/debug"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runVersion(t *testing.T, info *debug.BuildInfo, ok bool) string {
	t.Helper()

	original := buildInfo
	buildInfo = func() (*debug.BuildInfo, bool) { return info, ok }
	t.Cleanup(func() { buildInfo = original })

	cmd := newVersionCmd()

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	return out.String()
}

func TestVersionCmd_Output(t *testing.T) {
	info := &debug.BuildInfo{
		GoVersion: "go1.25.1",
		Main:      debug.Module{Path: "vbuild.dev/pkg/vbuild", Version: "v0.3.0"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef0123"},
			{Key: "vcs.modified", Value: "true"},
		},
	}

	assert.Equal(t, "vbuild v0.3.0\nrevision 0123456789ab-dirty\ngo go1.25.1\n", runVersion(t, info, true))
}

func TestVersionCmd_DevelWithoutVCS(t *testing.T) {
	info := &debug.BuildInfo{GoVersion: "go1.25.1"}

	assert.Equal(t, "vbuild (devel)\ngo go1.25.1\n", runVersion(t, info, true))
}

func TestVersionCmd_NoBuildInfo(t *testing.T) {
	assert.Equal(t, "vbuild version: unknown\n", runVersion(t, nil, false))
}

func TestVcsRevision(t *testing.T) {
	clean := &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: "abc123"},
		{Key: "vcs.modified", Value: "false"},
	}}

	assert.Equal(t, "abc123", vcsRevision(clean))
	assert.Empty(t, vcsRevision(&debug.BuildInfo{}))
}
