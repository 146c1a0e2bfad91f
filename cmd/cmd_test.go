package cmd

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestShadowThenHistory(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "runs.db")
	cfgFile := filepath.Join(dir, "config.yaml")
	cfg := `output:
  chart: false
  csv: false
  json: true
metrics:
  sinks:
    - type: sqlite
      conf:
        path: ` + db + `
logging:
  level: warn
`
	require.NoError(t, os.WriteFile(cfgFile, []byte(cfg), 0o644))

	out := execute(t, "shadow", "-c", cfgFile, "--tilt", "0", "--tilt", "90", "--out", dir)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "Average shadow area for tilt angle 0°: "), lines[0])
	assert.True(t, strings.HasSuffix(lines[1], " square meters"), lines[1])
	_, err := os.Stat(filepath.Join(dir, "shadow_summary.json"))
	require.NoError(t, err)

	hist := execute(t, "history", "--db", db)
	rows := strings.Split(strings.TrimSpace(hist), "\n")
	require.Len(t, rows, 3)
	assert.Contains(t, rows[0], "RUN")
	assert.Contains(t, rows[1], "Montpellier")
}

func TestSunPathCommand(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("logging:\n  level: warn\n"), 0o644))
	png := filepath.Join(dir, "sun.png")
	csvPath := filepath.Join(dir, "sun.csv")

	execute(t, "sunpath", "-c", cfgFile, "--year", "2023", "--out", png, "--csv", csvPath)
	for _, p := range []string{png, csvPath} {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
	data, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "timestamp,apparent_elevation"))
}

func TestExplicitConfigMustExist(t *testing.T) {
	rootCmd.SetArgs([]string{"shadow", "-c", filepath.Join(t.TempDir(), "missing.yaml")})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.Execute())
}

func TestExecuteClosesLogFile(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "logs", "pvshadow.log")
	cfgFile := filepath.Join(dir, "config.yaml")
	cfg := `output:
  chart: false
  csv: false
  json: true
logging:
  level: info
  file: ` + logPath + `
`
	require.NoError(t, os.WriteFile(cfgFile, []byte(cfg), 0o644))

	rootCmd.SetArgs([]string{"shadow", "-c", cfgFile, "--tilt", "30", "--out", dir})
	rootCmd.SetOut(&bytes.Buffer{})
	require.NoError(t, Execute())
	assert.Nil(t, logFile)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"component":"cli"`)
}

func TestHistoryMissingDatabase(t *testing.T) {
	db := filepath.Join(t.TempDir(), "typo.db")
	rootCmd.SetArgs([]string{"history", "--db", db})
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	_, statErr := os.Stat(db)
	assert.True(t, errors.Is(statErr, fs.ErrNotExist), "no database file is created")
}
