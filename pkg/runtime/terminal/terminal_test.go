package terminal

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/activity-atlas/pkg/services/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exportXML = `<?xml version="1.0" encoding="UTF-8"?>
<HealthData locale="en_US">
 <Record type="HKQuantityTypeIdentifierStepCount" sourceName="Watch" unit="count" startDate="2024-03-04 08:01:00 -0500" endDate="2024-03-04 08:02:00 -0500" value="40"/>
 <Record type="HKQuantityTypeIdentifierStepCount" sourceName="Watch" unit="count" startDate="2024-03-04 08:04:00 -0500" endDate="2024-03-04 08:05:00 -0500" value="60"/>
 <Record type="HKQuantityTypeIdentifierStepCount" sourceName="Watch" unit="count" startDate="2024-03-04 18:30:00 -0500" endDate="2024-03-04 18:31:00 -0500" value="25"/>
 <Record type="HKQuantityTypeIdentifierStepCount" sourceName="Watch" unit="count" startDate="2024-03-05 07:00:00 -0500" endDate="2024-03-05 07:01:00 -0500" value="11"/>
</HealthData>`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	vendors, err := registry.NewDefault()
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return NewCLI(Options{Vendors: vendors, Output: out, ErrOutput: &bytes.Buffer{}}), out
}

// fixture writes a profiles file with one Apple Health profile and a settings
// file that disables pacing.
func fixture(t *testing.T) (profiles, settings string) {
	t.Helper()
	dir := t.TempDir()
	export := writeFile(t, dir, "export.xml", exportXML)
	profiles = writeFile(t, dir, "profiles.ini", fmt.Sprintf("[phone]\nvendor = applehealth\nexport_path = %s\n", export))
	settings = writeFile(t, dir, "settings.yaml", "fetch:\n  pacing: 0s\nlog:\n  level: error\n")
	return profiles, settings
}

func TestCLI_Platforms(t *testing.T) {
	cli, out := newTestCLI(t)

	require.NoError(t, cli.ExecuteContext(context.Background(), "platforms"))

	assert.Contains(t, out.String(), "Fitness Platforms")
	assert.Regexp(t, `\| fitbit\s+\| supported`, out.String())
	assert.Regexp(t, `\| googlefit\s+\| unsupported`, out.String())
}

func TestCLI_Profiles(t *testing.T) {
	profiles, settings := fixture(t)
	cli, out := newTestCLI(t)

	require.NoError(t, cli.ExecuteContext(context.Background(),
		"profiles", "--profiles", profiles, "--settings", settings))

	assert.Regexp(t, `\| phone\s+\| applehealth`, out.String())
}

func TestCLI_ProfilesMissingFile(t *testing.T) {
	_, settings := fixture(t)
	cli, _ := newTestCLI(t)

	err := cli.ExecuteContext(context.Background(),
		"profiles", "--profiles", filepath.Join(t.TempDir(), "none.ini"), "--settings", settings)
	assert.Error(t, err)
}

func TestCLI_AnalyzeProfile(t *testing.T) {
	profiles, settings := fixture(t)
	cli, out := newTestCLI(t)

	err := cli.ExecuteContext(context.Background(), "analyze",
		"--profiles", profiles, "--settings", settings,
		"--profile", "phone", "--from", "2024-03-04", "--to", "2024-03-05")
	require.NoError(t, err)

	report := out.String()
	assert.Contains(t, report, "Step Activity Report (2 days)")
	assert.Contains(t, report, "Period: 2024-03-04 to 2024-03-05")
	assert.Regexp(t, `\| Mean\s+\| 68\.00`, report)
	assert.Regexp(t, `\| Peak Interval\s+\| 08:00`, report)
	assert.Regexp(t, `\| Covered\s+\| 2 `, report)
	assert.Regexp(t, `\| Stop Reason\s+\| done`, report)
	assert.NotContains(t, report, "Partial result")
}

func TestCLI_AnalyzeSamples(t *testing.T) {
	samples := writeFile(t, t.TempDir(), "samples.json", `[
		{"date": "2024-01-06", "interval": 0, "steps": 100},
		{"date": "2024-01-06", "interval": 5, "steps": null},
		{"date": "2024-01-07", "interval": 0, "steps": null},
		{"date": "2024-01-08", "interval": 0, "steps": 300}
	]`)
	_, settings := fixture(t)
	cli, out := newTestCLI(t)

	require.NoError(t, cli.ExecuteContext(context.Background(),
		"analyze", "--samples", samples, "--settings", settings))

	report := out.String()
	assert.Contains(t, report, "Step Activity Report (3 days)")
	assert.Regexp(t, `\| Missing Steps\s+\| 2 `, report)
	assert.Regexp(t, `\| Missing Days\s+\| 1 `, report)
	assert.NotContains(t, report, "=== Fetch ===")
}

func TestCLI_AnalyzeValidation(t *testing.T) {
	profiles, settings := fixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no source", []string{"analyze", "--settings", settings}},
		{"profile without range", []string{"analyze", "--profiles", profiles, "--profile", "phone"}},
		{"bad date", []string{"analyze", "--profiles", profiles, "--settings", settings,
			"--profile", "phone", "--from", "03/04/2024", "--to", "2024-03-05"}},
		{"unknown profile", []string{"analyze", "--profiles", profiles, "--settings", settings,
			"--profile", "watch", "--from", "2024-03-04", "--to", "2024-03-05"}},
		{"reversed range", []string{"analyze", "--profiles", profiles, "--settings", settings,
			"--profile", "phone", "--from", "2024-03-05", "--to", "2024-03-04"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cli, out := newTestCLI(t)
			assert.Error(t, cli.ExecuteContext(context.Background(), tc.args...))
			assert.Empty(t, out.String())
		})
	}
}

func TestCLI_ImputeFlagUsage(t *testing.T) {
	cli, _ := newTestCLI(t)

	cmd, _, err := cli.rootCmd.Find([]string{"analyze"})
	require.NoError(t, err)
	assert.Contains(t, cmd.Flags().Lookup("impute").Usage, "interval mean")
}
