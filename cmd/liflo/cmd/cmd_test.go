package cmd

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	if args == nil {
		args = []string{}
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestTipsCmd(t *testing.T) {
	out, err := execute(t, TipsCmd())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 5)
	assert.True(t, strings.HasPrefix(lines[1], "1. "))
	assert.True(t, strings.HasPrefix(lines[4], "4. "))
}

func TestMigrateCmd(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_PROVIDER", "sqlite")
	t.Setenv("DB_CONNECTION", filepath.Join(t.TempDir(), "liflo.db"))

	out, err := execute(t, MigrateCmd())
	require.NoError(t, err)
	assert.Equal(t, "schema version 1\n", out)

	out, err = execute(t, MigrateCmd(), "version")
	require.NoError(t, err)
	assert.Equal(t, "schema version 1\n", out)

	out, err = execute(t, MigrateCmd(), "down")
	require.NoError(t, err)
	assert.Equal(t, "schema version 0\n", out)
}

func TestMigrateCmdRejectsNonSQLProvider(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_PROVIDER", "memory")

	_, err := execute(t, MigrateCmd())
	assert.ErrorContains(t, err, "no sql driver")
}

func TestReviewCmd(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("DB_PROVIDER", "memory")

	_, err := execute(t, ReviewCmd(), "--from", "2025-06-01", "--to", "2025-06-30")
	assert.ErrorContains(t, err, "--user")

	out, err := execute(t, ReviewCmd(), "--user", "u1", "--from", "2025-06-30", "--to", "2025-06-01")
	require.NoError(t, err)

	var summary map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &summary))
	assert.Equal(t, "2025-06-01", summary["from"])
	assert.EqualValues(t, 0, summary["count"])
}
