package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/olist-lakehouse/lakestream/internal/version"
)

func runVersion(t *testing.T, args ...string) string {
	t.Helper()
	cmd := &cobra.Command{Use: "lakestream"}
	cmd.AddCommand(newVersionCmd())

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"version"}, args...))
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	require.Equal(t, version.Detailed(), strings.TrimSpace(runVersion(t)))
}

func TestVersionCommand_JSON(t *testing.T) {
	var info version.Info
	require.NoError(t, json.Unmarshal([]byte(runVersion(t, "--json")), &info))
	require.Equal(t, "lakestream", info.App)
	require.Equal(t, version.Version, info.Version)
}
