package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"codeberg.org/mutker/ampurr/internal/control"
	"codeberg.org/mutker/ampurr/internal/errors"
	"codeberg.org/mutker/ampurr/internal/sysfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type machine struct {
	dir       string
	ps        string
	cpu       string
	limitFile string
	historyDB string
	history   bool
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.TrimSpace(string(data))
}

// newMachine lays out a fake sysfs tree under a temp dir and points
// AMPURR_CONFIG at a config file using it.
func newMachine(t *testing.T) *machine {
	t.Helper()

	dir := t.TempDir()
	m := &machine{
		dir:       dir,
		ps:        filepath.Join(dir, "power_supply"),
		cpu:       filepath.Join(dir, "cpu"),
		limitFile: filepath.Join(dir, "etc", "ampurr.conf"),
		historyDB: filepath.Join(dir, "history.db"),
	}

	writeFile(t, m.threshold(), "80\n")
	writeFile(t, filepath.Join(m.ps, "BAT0", sysfs.CapacityFile), "64\n")
	writeFile(t, filepath.Join(m.ps, "AC", "online"), "1\n")
	for i := 0; i < 4; i++ {
		writeFile(t, m.governor(i), "powersave\n")
	}
	writeFile(t, filepath.Join(m.cpu, "cpu0", sysfs.AvailableGovernorsFile), "performance powersave\n")

	m.writeConfig(t, m.limitFile)

	return m
}

func (m *machine) writeConfig(t *testing.T, limitFile string) {
	t.Helper()

	path := filepath.Join(m.dir, "ampurr.toml")
	writeFile(t, path, fmt.Sprintf(`log_level = "error"
limit_file = %q
power_supply_path = %q
cpu_path = %q
lock_file = %q
history = %t
history_db = %q
`, limitFile, m.ps, m.cpu, filepath.Join(m.dir, "ampurr.pid"), m.history, m.historyDB))

	t.Setenv("AMPURR_CONFIG", path)
}

// enableHistory turns the journal on in the config file, stored at db.
func (m *machine) enableHistory(t *testing.T, db string) {
	t.Helper()

	m.history = true
	m.historyDB = db
	m.writeConfig(t, m.limitFile)
}

func (m *machine) threshold() string {
	return filepath.Join(m.ps, "BAT0", sysfs.ThresholdFile)
}

func (m *machine) governor(core int) string {
	return filepath.Join(m.cpu, fmt.Sprintf("cpu%d", core), sysfs.GovernorFile)
}

func asRoot(t *testing.T, root bool) {
	t.Helper()

	saved := privileged
	privileged = func() bool { return root }
	t.Cleanup(func() { privileged = saved })
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func TestBatteryGet(t *testing.T) {
	newMachine(t)

	out, err := run(t, "battery", "get")
	require.NoError(t, err)
	assert.Equal(t, "current charge limit: 80%\n", out)
}

func TestBatteryStatus(t *testing.T) {
	m := newMachine(t)

	out, err := run(t, "battery", "status")
	require.NoError(t, err)
	assert.Equal(t, "set charge limit: 80%\ncurrent capacity:   64%\n", out)

	require.NoError(t, os.Remove(filepath.Join(m.ps, "BAT0", sysfs.CapacityFile)))

	out, err = run(t, "battery", "status")
	require.NoError(t, err)
	assert.Equal(t, "set charge limit: 80%\ncould not determine current capacity\n", out)
}

func TestBatteryNotFound(t *testing.T) {
	m := newMachine(t)
	require.NoError(t, os.RemoveAll(filepath.Join(m.ps, "BAT0")))

	_, err := run(t, "battery", "get")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrNotFound))
	assert.Equal(t, "no supported battery found", err.Error())
}

func TestBatterySet(t *testing.T) {
	m := newMachine(t)
	asRoot(t, true)

	out, err := run(t, "battery", "set", "75")
	require.NoError(t, err)
	assert.Equal(t,
		"charge limit successfully set to 75% for the current session.\n"+
			"limit of 75% saved and will be applied on next boot.\n", out)

	assert.Equal(t, "75", readFile(t, m.threshold()))
	assert.Equal(t, "75", readFile(t, m.limitFile))

	_, err = os.Stat(filepath.Join(m.dir, "ampurr.pid"))
	assert.True(t, os.IsNotExist(err), "lock file released")
}

func TestBatterySetRejected(t *testing.T) {
	tests := []struct {
		name string
		root bool
		arg  string
		code errors.ErrorCode
	}{
		{name: "not root", root: false, arg: "75", code: errors.ErrPermission},
		{name: "below range", root: true, arg: "30", code: errors.ErrOutOfRange},
		{name: "above range", root: true, arg: "101", code: errors.ErrOutOfRange},
		{name: "not a number", root: true, arg: "full", code: errors.ErrInvalidArgument},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t)
			asRoot(t, tt.root)

			out, err := run(t, "battery", "set", tt.arg)
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, tt.code), "got %v", err)
			assert.Empty(t, out)

			assert.Equal(t, "80", readFile(t, m.threshold()))
			_, err = os.Stat(m.limitFile)
			assert.True(t, os.IsNotExist(err))
		})
	}
}

func TestBatterySetPersistenceFailure(t *testing.T) {
	m := newMachine(t)
	asRoot(t, true)

	blocker := filepath.Join(m.dir, "blocker")
	writeFile(t, blocker, "")
	m.writeConfig(t, filepath.Join(blocker, "ampurr.conf"))

	out, err := run(t, "battery", "set", "70")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrPersistence))
	assert.Equal(t, "charge limit successfully set to 70% for the current session.\n", out)
	assert.Equal(t, "70", readFile(t, m.threshold()))
}

func TestCPUStatusAndList(t *testing.T) {
	newMachine(t)

	out, err := run(t, "cpu", "status")
	require.NoError(t, err)
	assert.Equal(t, "current CPU governor: powersave\n", out)

	out, err = run(t, "cpu", "list")
	require.NoError(t, err)
	assert.Equal(t, "available governors for your system:\n  performance powersave\n", out)
}

func TestCPUWithoutCpufreq(t *testing.T) {
	m := newMachine(t)
	require.NoError(t, os.RemoveAll(m.cpu))

	out, err := run(t, "cpu", "status")
	require.NoError(t, err)
	assert.Equal(t, "current CPU governor: not available\n", out)

	out, err = run(t, "cpu", "list")
	require.NoError(t, err)
	assert.Equal(t, "could not find any available governors.\n", out)

	asRoot(t, true)
	_, err = run(t, "cpu", "set", "performance")
	assert.True(t, errors.HasCode(err, errors.ErrUnsupported))
}

func TestCPUCommandsWithoutBattery(t *testing.T) {
	m := newMachine(t)
	require.NoError(t, os.RemoveAll(m.ps))
	asRoot(t, true)

	out, err := run(t, "cpu", "set", "performance")
	require.NoError(t, err)
	assert.Equal(t, "CPU governor successfully set to 'performance' on 4 cores.\n", out)

	for i := 0; i < 4; i++ {
		assert.Equal(t, "performance", readFile(t, m.governor(i)))
	}
}

func TestCPUSetInvalid(t *testing.T) {
	m := newMachine(t)
	asRoot(t, true)

	_, err := run(t, "cpu", "set", "turbo")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidGovernor))
	assert.Equal(t,
		"'turbo' is not a valid governor, available options for your system: performance powersave",
		err.Error())
	assert.Equal(t, "powersave", readFile(t, m.governor(0)))
}

func TestMonitor(t *testing.T) {
	newMachine(t)

	out, err := run(t, "monitor", "--count", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "battery: BAT0")
	assert.Contains(t, out, "limit: 80%")
	assert.Contains(t, out, "capacity: 64%")
	assert.Contains(t, out, "governor: powersave")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestMonitorRejectsZeroInterval(t *testing.T) {
	newMachine(t)

	_, err := run(t, "monitor", "--interval", "0", "--count", "1")
	assert.True(t, errors.HasCode(err, errors.ErrInvalidInterval))
}

func TestPrintSnapshotErrors(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printSnapshot(&out, control.Snapshot{
		BatteryErr:     "no supported battery found",
		ChargeLimitErr: "no supported battery found",
		Governor:       sysfs.GovernorNotAvailable,
	}))

	line := out.String()
	assert.Contains(t, line, "battery: no supported battery found")
	assert.Contains(t, line, "limit: unknown")
	assert.Contains(t, line, "capacity: unknown")
	assert.Contains(t, line, "governor: not available")
}

func TestHistory(t *testing.T) {
	newMachine(t)
	asRoot(t, true)

	_, err := run(t, "battery", "set", "90", "--history")
	require.NoError(t, err)
	_, err = run(t, "cpu", "set", "performance", "--history")
	require.NoError(t, err)

	out, err := run(t, "history", "--history", "--limit", "1")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "SETTING")
	assert.Contains(t, lines[1], "governor")
	assert.Contains(t, lines[1], "performance")

	out, err = run(t, "history", "--history")
	require.NoError(t, err)
	assert.Contains(t, out, "charge_limit")
	assert.Contains(t, out, "90")
}

func TestHistoryDisabled(t *testing.T) {
	newMachine(t)

	_, err := run(t, "history")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrInvalidConfig))
}

func TestReadCommandsIgnoreUnusableHistory(t *testing.T) {
	m := newMachine(t)

	blocker := filepath.Join(m.dir, "blocker")
	writeFile(t, blocker, "")
	m.enableHistory(t, filepath.Join(blocker, "history.db"))

	out, err := run(t, "battery", "get")
	require.NoError(t, err)
	assert.Equal(t, "current charge limit: 80%\n", out)

	for _, args := range [][]string{
		{"battery", "status"},
		{"cpu", "status"},
		{"cpu", "list"},
		{"monitor", "--count", "1"},
	} {
		_, err := run(t, args...)
		assert.NoError(t, err, "%v", args)
	}

	asRoot(t, true)
	_, err = run(t, "battery", "set", "75")
	assert.True(t, errors.HasCode(err, errors.ErrInitHistory), "got %v", err)
	assert.Equal(t, "80", readFile(t, m.threshold()))
}

func TestHistoryClosedAfterFailedCommand(t *testing.T) {
	m := newMachine(t)
	m.enableHistory(t, m.historyDB)
	asRoot(t, true)

	blocker := filepath.Join(m.dir, "blocker")
	writeFile(t, blocker, "")
	m.writeConfig(t, filepath.Join(blocker, "ampurr.conf"))

	_, err := run(t, "battery", "set", "70")
	require.True(t, errors.HasCode(err, errors.ErrPersistence), "got %v", err)

	// Closing the last connection checkpoints and removes the WAL.
	wal, err := os.Stat(m.historyDB + "-wal")
	if err == nil {
		assert.Zero(t, wal.Size())
	} else {
		assert.True(t, os.IsNotExist(err))
	}

	out, err := run(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "charge_limit")
	assert.Contains(t, out, "false")
}

func TestIsBoot(t *testing.T) {
	assert.True(t, isBoot([]string{"--apply-on-boot"}))
	assert.False(t, isBoot([]string{"--log-level", "debug", "--apply-on-boot"}))
	assert.False(t, isBoot([]string{"cpu", "set", "turbo", "--apply-on-boot"}))
	assert.False(t, isBoot([]string{"battery", "get"}))
	assert.False(t, isBoot(nil))
}

func TestApplyOnBootFlagAfterCommandIsRejected(t *testing.T) {
	m := newMachine(t)
	asRoot(t, true)

	_, err := run(t, "cpu", "set", "turbo", "--apply-on-boot")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply-on-boot")
	assert.Equal(t, "powersave", readFile(t, m.governor(0)))
}

func TestRunBoot(t *testing.T) {
	m := newMachine(t)
	asRoot(t, true)

	runBoot(context.Background())
	assert.Equal(t, "80", readFile(t, m.threshold()), "nothing saved, nothing applied")

	writeFile(t, m.limitFile, "65\n")
	runBoot(context.Background())
	assert.Equal(t, "65", readFile(t, m.threshold()))
}

func TestRunBootIgnoresFailures(t *testing.T) {
	m := newMachine(t)

	writeFile(t, m.limitFile, "65\n")
	asRoot(t, false)
	runBoot(context.Background())
	assert.Equal(t, "80", readFile(t, m.threshold()))

	writeFile(t, m.limitFile, "twenty\n")
	asRoot(t, true)
	runBoot(context.Background())
	assert.Equal(t, "80", readFile(t, m.threshold()))

	require.NoError(t, os.RemoveAll(m.ps))
	writeFile(t, m.limitFile, "65\n")
	runBoot(context.Background())
	assert.Equal(t, "65", readFile(t, m.limitFile))
}
