package sysfs_test

import (
	"path/filepath"
	"testing"

	"codeberg.org/mutker/ampurr/internal/errors"
	"codeberg.org/mutker/ampurr/internal/sysfs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	psPath  = sysfs.DefaultPowerSupplyPath
	cpuPath = sysfs.DefaultCPUPath
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestFindBatterySkipsBatteryWithoutThreshold(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, filepath.Join(psPath, "BAT0", "capacity"), "80\n")
	writeFile(t, fs, filepath.Join(psPath, "BAT1", sysfs.ThresholdFile), "100\n")

	b, err := sysfs.NewLocator(fs).FindBattery()
	require.NoError(t, err)
	assert.Equal(t, "BAT1", b.Name)
	assert.Equal(t, filepath.Join(psPath, "BAT1"), b.Path)
	assert.Equal(t, filepath.Join(psPath, "BAT1", sysfs.ThresholdFile), b.ThresholdPath())
}

func TestFindBatteryIgnoresNonBatteries(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, filepath.Join(psPath, "AC", sysfs.ThresholdFile), "100")
	writeFile(t, fs, filepath.Join(psPath, "hidpp_battery_0", sysfs.ThresholdFile), "100")

	_, err := sysfs.NewLocator(fs).FindBattery()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrNotFound))
}

func TestFindBatteryNaturalOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, filepath.Join(psPath, "BAT10", sysfs.ThresholdFile), "100")
	writeFile(t, fs, filepath.Join(psPath, "BAT2", sysfs.ThresholdFile), "100")
	writeFile(t, fs, filepath.Join(psPath, "BATT", sysfs.ThresholdFile), "100")

	b, err := sysfs.NewLocator(fs).FindBattery()
	require.NoError(t, err)
	assert.Equal(t, "BAT2", b.Name)
}

func TestFindBatteryMissingBase(t *testing.T) {
	_, err := sysfs.NewLocator(afero.NewMemMapFs()).FindBattery()
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrNotFound))
	assert.Equal(t, "no supported battery found", err.Error())
}

func TestFindBatteryCustomRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/fake/ps/BAT0/"+sysfs.ThresholdFile, "80")

	b, err := sysfs.NewLocator(fs, sysfs.WithPowerSupplyPath("/fake/ps")).FindBattery()
	require.NoError(t, err)
	assert.Equal(t, "/fake/ps/BAT0", b.Path)
}

func TestCoresSortedAndFiltered(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, dir := range []string{"cpu0", "cpu1", "cpu10", "cpu2", "cpufreq", "cpuidle", "cpu3x"} {
		require.NoError(t, fs.MkdirAll(filepath.Join(cpuPath, dir), 0o755))
	}
	writeFile(t, fs, filepath.Join(cpuPath, "online"), "0-10")

	cores, err := sysfs.NewLocator(fs).Cores()
	require.NoError(t, err)

	var indexes []int
	for _, c := range cores {
		indexes = append(indexes, c.Index)
	}
	assert.Equal(t, []int{0, 1, 2, 10}, indexes)
	assert.Equal(t, filepath.Join(cpuPath, "cpu10", sysfs.GovernorFile), cores[3].GovernorPath())
}

func TestCoresMissingBaseIsEmpty(t *testing.T) {
	cores, err := sysfs.NewLocator(afero.NewMemMapFs()).Cores()
	require.NoError(t, err)
	assert.Empty(t, cores)
}

func TestAvailableGovernors(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, filepath.Join(cpuPath, "cpu0", sysfs.AvailableGovernorsFile), "performance  powersave\tschedutil \n")

	governors, err := sysfs.NewLocator(fs).AvailableGovernors()
	require.NoError(t, err)
	assert.Equal(t, sysfs.Governors{"performance", "powersave", "schedutil"}, governors)
	assert.True(t, governors.Contains("powersave"))
	assert.False(t, governors.Contains("ondemand"))
	assert.Equal(t, "performance powersave schedutil", governors.String())
}

func TestAvailableGovernorsMissingIsEmpty(t *testing.T) {
	governors, err := sysfs.NewLocator(afero.NewMemMapFs()).AvailableGovernors()
	require.NoError(t, err)
	assert.Empty(t, governors)
}

func TestReadInt(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/a", "80\n")
	writeFile(t, fs, "/b", "eighty")

	v, err := sysfs.ReadInt(fs, "/a")
	require.NoError(t, err)
	assert.Equal(t, 80, v)

	_, err = sysfs.ReadInt(fs, "/b")
	assert.Error(t, err)

	_, err = sysfs.ReadInt(fs, "/c")
	assert.Error(t, err)
}

func TestWriteStringDoesNotCreate(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/attr", "100\n")

	require.NoError(t, sysfs.WriteString(fs, "/attr", "80"))
	got, err := sysfs.ReadString(fs, "/attr")
	require.NoError(t, err)
	assert.Equal(t, "80", got)

	assert.Error(t, sysfs.WriteString(fs, "/missing", "80"))
	ok, err := sysfs.Exists(fs, "/missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
