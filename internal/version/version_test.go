package version

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// TestVersionStrings ensures Short and Full return consistent information.
func TestVersionStrings(t *testing.T) {
	t.Parallel()

	require.NotEmpty(t, Short())
	require.Contains(t, Full(), Short())
	require.Contains(t, Full(), runtime.Version())
}

// TestGet fills every field.
func TestGet(t *testing.T) {
	t.Parallel()

	info := Get()

	require.Equal(t, Version, info.Version)
	require.NotEmpty(t, info.Commit)
	require.NotEmpty(t, info.BuildTime)
	require.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
}

// TestAttachCobraVersionCommand prints the binary name followed by the build metadata.
func TestAttachCobraVersionCommand(t *testing.T) {
	t.Parallel()

	root := &cobra.Command{Use: "zone-monitor"}
	AttachCobraVersionCommand(root)

	var out bytes.Buffer

	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	require.True(t, strings.HasPrefix(out.String(), "zone-monitor version: "+Short()))
}
