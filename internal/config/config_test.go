package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Household = HouseholdConfig{ID: "home", UserID: "ana"}
	cfg.Storage = StorageConfig{Backend: "sqlite", Path: "monefy.db", CapacityBytes: 1 << 20}
	cfg.Backup.GitCommit = true
	cfg.Backup.GCSBucket = "family-backups"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "store", cfg.Storage.Path)
	assert.Zero(t, cfg.Storage.CapacityBytes)
	assert.Equal(t, "backups", cfg.Backup.Dir)
	assert.False(t, cfg.Backup.GitCommit)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "chase", cfg.Import.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("storage:\n  backend: memory\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "backups", cfg.Backup.Dir)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("storage: [unclosed"), 0o644))
	_, err := LoadOrDefault(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)
	assert.Contains(t, contents, "backend: file")
	assert.Contains(t, contents, "capacity_bytes: 0")
	assert.Contains(t, contents, "git_commit: false")
	assert.NotContains(t, contents, "gcs_bucket")
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvBackend:   "sqlite",
		EnvPath:      "/var/lib/monefy.db",
		EnvCapacity:  " 2048 ",
		EnvLogLevel:  "debug",
		EnvGCSBucket: "bkt",
		EnvUser:      "sam",
	}
	lookup := func(k string) (string, bool) { v, ok := env[k]; return v, ok }

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(lookup))
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/monefy.db", cfg.Storage.Path)
	assert.Equal(t, int64(2048), cfg.Storage.CapacityBytes)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, "bkt", cfg.Backup.GCSBucket)
	assert.Equal(t, "sam", cfg.Household.UserID)

	env[EnvCapacity] = "lots"
	assert.ErrorContains(t, Default().ApplyEnv(lookup), EnvCapacity)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "floppy"
	cfg.Storage.CapacityBytes = -1
	cfg.Log.Format = "xml"
	cfg.Backup.Dir = ""

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"storage.backend", "storage.capacity_bytes", "log.format", "backup.dir"} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidate_ConditionalFields(t *testing.T) {
	cfg := Default()
	cfg.Storage = StorageConfig{Backend: "memory"}
	assert.NoError(t, cfg.Validate(), "memory backend needs no path")

	cfg.Storage.Backend = "sqlite"
	assert.ErrorContains(t, cfg.Validate(), "storage.path")

	cfg = Default()
	cfg.Backup.GitCommit = true
	cfg.Backup.AuthorName = ""
	assert.ErrorContains(t, cfg.Validate(), "backup.author_name")
}

func TestResolve(t *testing.T) {
	assert.Equal(t, filepath.Join("data", "store"), Resolve("data", "store"))
	assert.Equal(t, "/abs/store", Resolve("data", "/abs/store"))
	assert.Equal(t, "", Resolve("data", ""))
}
