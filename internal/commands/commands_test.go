package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faheemho18/monefy-pwa-clone/internal/activity"
	"github.com/faheemho18/monefy-pwa-clone/internal/backup"
	"github.com/faheemho18/monefy-pwa-clone/internal/config"
	"github.com/faheemho18/monefy-pwa-clone/internal/ledger"
)

// Wednesday afternoon.
var now = time.Date(2025, 6, 18, 15, 0, 0, 0, time.UTC)

func runMonefy(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	e := newEnv()
	e.now = func() time.Time { return now }

	cmd := newRootCommand(e)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--dir", dir, "--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, dir string, args ...string) string {
	t.Helper()
	out, err := runMonefy(t, dir, args...)
	require.NoError(t, err, "monefy %s", strings.Join(args, " "))
	return out
}

func initDir(t *testing.T, args ...string) string {
	t.Helper()
	dir := t.TempDir()
	mustRun(t, dir, append([]string{"init"}, args...)...)
	return dir
}

// addedID pulls the short id out of "Added 1a2b3c4d expense ...".
func addedID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	require.GreaterOrEqual(t, len(fields), 2, out)
	return fields[1]
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	out := mustRun(t, dir, "init", "--household", "home")
	assert.Contains(t, out, "12 categories seeded")

	for _, d := range []string{"logs", "import", filepath.Join("import", "processed"), "store"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, d)
		assert.True(t, info.IsDir(), d)
	}

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Storage.Backend)
	assert.Equal(t, "home", cfg.Household.ID)

	out = mustRun(t, dir, "category")
	assert.Contains(t, out, "Food *")
	assert.Contains(t, out, "Salary *")

	_, err = runMonefy(t, dir, "init")
	assert.ErrorContains(t, err, "already exists")
}

func TestInit_SQLite(t *testing.T) {
	dir := initDir(t, "--backend", "sqlite", "--capacity", "100000")
	assert.FileExists(t, filepath.Join(dir, "monefy.db"))

	out := mustRun(t, dir, "usage")
	assert.Contains(t, out, "sqlite")
	assert.Contains(t, out, "100000 bytes")
	assert.NotContains(t, out, "estimated")
}

func TestAddListSummary(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "add", "42.50", "-c", "Food", "-n", "Lunch", "-d", "2025-06-17")
	mustRun(t, dir, "add", "1000", "--income", "-c", "salary", "-d", "2025-06-01")
	mustRun(t, dir, "add", "10", "-c", "Travel", "-d", "2025-05-20")

	out := mustRun(t, dir, "list")
	assert.Contains(t, out, "-42.50")
	assert.Contains(t, out, "1000.00")
	assert.Contains(t, out, "Lunch")
	assert.Less(t, strings.Index(out, "Lunch"), strings.Index(out, "Salary"), "newest first")

	out = mustRun(t, dir, "list", "--period", "month", "--kind", "expense")
	assert.Contains(t, out, "Food")
	assert.NotContains(t, out, "Travel")
	assert.NotContains(t, out, "Salary")

	out = mustRun(t, dir, "summary", "--period", "month")
	assert.Contains(t, out, "This Month (2 transactions)")
	assert.Contains(t, out, "957.50")
	assert.Contains(t, out, "Top expenses")
	assert.Contains(t, out, "Food")
}

func TestAdd_Rejected(t *testing.T) {
	dir := initDir(t)

	_, err := runMonefy(t, dir, "add", "0", "-c", "Food")
	assert.ErrorContains(t, err, "amount must be greater than 0")

	_, err = runMonefy(t, dir, "add", "12.345", "-c", "Food")
	assert.ErrorContains(t, err, "more than 2 decimal places")

	_, err = runMonefy(t, dir, "add", "5", "-c", "Salary")
	assert.ErrorIs(t, err, ledger.ErrNotFound, "salary is an income category")

	_, err = runMonefy(t, dir, "add", "5", "-c", "Food", "-d", "2025-07-01")
	assert.ErrorContains(t, err, "future")

	_, err = runMonefy(t, dir, "add", "abc", "-c", "Food")
	assert.ErrorContains(t, err, "invalid amount")

	out := mustRun(t, dir, "list")
	assert.Equal(t, 1, strings.Count(out, "\n"), "only the header")
}

func TestEditDelete(t *testing.T) {
	dir := initDir(t)
	short := addedID(t, mustRun(t, dir, "add", "42.50", "-c", "Food", "-d", "2025-06-17"))

	mustRun(t, dir, "edit", short, "--amount", "10", "-c", "Shopping", "-n", "Socks")
	out := mustRun(t, dir, "list")
	assert.Contains(t, out, "-10.00")
	assert.Contains(t, out, "Shopping")
	assert.Contains(t, out, "Socks")
	assert.NotContains(t, out, "42.50")

	mustRun(t, dir, "delete", short)
	out = mustRun(t, dir, "list")
	assert.NotContains(t, out, "Socks")

	_, err := runMonefy(t, dir, "delete", short)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestCategoryCommands(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "category", "add", "Pets", "--icon", "paw")
	assert.Contains(t, mustRun(t, dir, "category"), "Pets")

	_, err := runMonefy(t, dir, "category", "add", "pets")
	assert.ErrorContains(t, err, "already exists")

	mustRun(t, dir, "category", "edit", "Pets", "--name", "Animals")
	out := mustRun(t, dir, "category")
	assert.Contains(t, out, "Animals")
	assert.NotContains(t, out, "Pets")

	mustRun(t, dir, "add", "20", "-c", "Animals", "-d", "2025-06-10")
	out = mustRun(t, dir, "category", "delete", "Animals")
	assert.Contains(t, out, "1 transactions now have no category")

	assert.Contains(t, mustRun(t, dir, "list"), "Unknown")
}

func TestExportClearImport(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "add", "42.50", "-c", "Food", "-d", "2024-01-01")
	path := filepath.Join(dir, "export.json")
	mustRun(t, dir, "export", "-o", path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"formatVersion": "1.0"`)
	assert.Contains(t, string(data), `"$type": "instant"`)
	assert.Contains(t, string(data), `"amount": 42.50`)

	mustRun(t, dir, "clear", "--yes")
	assert.NotContains(t, mustRun(t, dir, "list"), "42.50")
	assert.NotContains(t, mustRun(t, dir, "category"), "Food")

	out := mustRun(t, dir, "import", path)
	assert.Contains(t, out, "Restored 1 transactions and 12 categories")
	out = mustRun(t, dir, "list")
	assert.Contains(t, out, "-42.50")
	assert.Contains(t, out, "2024-01-01")
	assert.Contains(t, out, "Food")
}

func TestImport_InvalidLeavesDataAlone(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "add", "5", "-c", "Food", "-d", "2025-06-01")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"formatVersion":"1.0","payload":{"categories":[]}}`), 0o644))
	_, err := runMonefy(t, dir, "import", bad)
	assert.ErrorIs(t, err, backup.ErrInvalidBackupFormat)

	require.NoError(t, os.WriteFile(bad, []byte(`{not json`), 0o644))
	_, err = runMonefy(t, dir, "import", bad)
	assert.ErrorIs(t, err, backup.ErrDeserialization)

	assert.Contains(t, mustRun(t, dir, "list"), "-5.00")
}

func TestExportCSV(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "add", "3.20", "-c", "Food", "-n", "Coffee, large", "-d", "2025-06-02")

	out := mustRun(t, dir, "export", "--format", "csv")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, ledger.CSVHeader, lines[0])
	assert.Contains(t, lines[1], `"Coffee, large"`)
	assert.Contains(t, lines[1], ",3.20,")

	_, err := runMonefy(t, dir, "export", "--format", "xml")
	assert.ErrorContains(t, err, "unknown export format")
}

func TestExport_FailureKeepsExistingFile(t *testing.T) {
	dir := initDir(t)
	path := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	_, err := runMonefy(t, dir, "export", "--format", "xml", "-o", path)
	require.ErrorContains(t, err, "unknown export format")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	mustRun(t, dir, "export", "-o", path)
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"formatVersion": "1.0"`)

	leftovers, err := filepath.Glob(filepath.Join(dir, ".monefy-export-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestClear(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "add", "5", "-c", "Food", "-d", "2025-06-01")

	_, err := runMonefy(t, dir, "clear")
	assert.ErrorContains(t, err, "--yes")
	assert.Contains(t, mustRun(t, dir, "list"), "-5.00")

	mustRun(t, dir, "backup", "--no-file")
	mustRun(t, dir, "clear", "-y")
	out := mustRun(t, dir, "restore")
	assert.Contains(t, out, "Restored 1 transactions")

	mustRun(t, dir, "clear", "--all", "-y")
	_, err = runMonefy(t, dir, "restore")
	assert.ErrorIs(t, err, backup.ErrNoRecoveryPoint)
}

func TestBackupRestoreFromDir(t *testing.T) {
	dir := initDir(t)
	mustRun(t, dir, "add", "7.25", "-c", "Bills", "-d", "2025-06-03")

	out := mustRun(t, dir, "backup")
	name := backup.FileName(now)
	assert.Contains(t, out, "Published "+name)
	assert.FileExists(t, filepath.Join(dir, "backups", name))

	mustRun(t, dir, "clear", "--all", "-y")
	out = mustRun(t, dir, "restore", "--from", "dir")
	assert.Contains(t, out, "Restored 1 transactions")
	assert.Contains(t, mustRun(t, dir, "list"), "-7.25")

	_, err := runMonefy(t, dir, "restore", "--from", "dir", "monefy-backup-19990101T000000Z.json")
	assert.Error(t, err)

	_, err = runMonefy(t, dir, "restore", "--from", "gcs")
	assert.ErrorContains(t, err, "no GCS bucket configured")
}

func TestImportBank(t *testing.T) {
	dir := initDir(t)
	src, err := os.ReadFile(filepath.Join("..", "..", "testdata", "chase_checking.csv"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "jan.csv"), src, 0o644))

	out := mustRun(t, dir, "import-bank", "--dry-run")
	assert.Contains(t, out, "jan.csv: 6 transactions (dry run)")
	assert.FileExists(t, filepath.Join(dir, "import", "jan.csv"))

	out = mustRun(t, dir, "import-bank")
	assert.Contains(t, out, "jan.csv: imported 6 transactions")
	assert.FileExists(t, filepath.Join(dir, "import", "processed", "jan.csv"))
	assert.Contains(t, mustRun(t, dir, "import-bank"), "Nothing to import")

	out = mustRun(t, dir, "list", "--kind", "income")
	assert.Contains(t, out, "3500.00")
	assert.Contains(t, out, "Other")

	out = mustRun(t, dir, "summary", "--period", "all", "--top", "0")
	assert.Contains(t, out, "6 transactions")
	assert.Contains(t, out, "3500.00")
	assert.Contains(t, out, "267.36")
}

func TestImportBank_GenericFile(t *testing.T) {
	dir := initDir(t)
	out := mustRun(t, dir, "import-bank", "--format", "generic", "--expense-category", "Food",
		filepath.Join("..", "..", "testdata", "generic.csv"))
	assert.Contains(t, out, "generic.csv: imported 2 transactions")
	assert.FileExists(t, filepath.Join("..", "..", "testdata", "generic.csv"), "explicit files stay in place")

	_, err := runMonefy(t, dir, "import-bank", "--format", "ofx", "x.csv")
	assert.ErrorContains(t, err, "unknown statement format")
}

func TestActivityLog(t *testing.T) {
	dir := initDir(t)
	short := addedID(t, mustRun(t, dir, "add", "5", "-c", "Food", "-d", "2025-06-01"))
	mustRun(t, dir, "delete", short)

	entries, err := activity.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, activity.ActionSeed, entries[0].Action)
	assert.Equal(t, activity.ActionAdd, entries[1].Action)
	assert.Equal(t, activity.ActionDelete, entries[2].Action)
	assert.True(t, now.Equal(entries[1].Timestamp))

	out := mustRun(t, dir, "log", "-n", "1")
	assert.Contains(t, out, "delete")
	assert.NotContains(t, out, "seed")
}

func TestUsage_NearlyFull(t *testing.T) {
	dir := initDir(t, "--capacity", "2000")
	out := mustRun(t, dir, "usage")
	assert.Contains(t, out, "Writable  true")
	assert.Contains(t, out, "2000 bytes")
	assert.Contains(t, out, "nearly full")
}

func TestConfigFromEnvironment(t *testing.T) {
	dir := initDir(t)
	t.Setenv(config.EnvBackend, "floppy")
	_, err := runMonefy(t, dir, "list")
	assert.ErrorContains(t, err, "storage.backend")
}

func TestDotEnv(t *testing.T) {
	dir := initDir(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(config.EnvLogFormat+"=yaml\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv(config.EnvLogFormat) })

	_, err := runMonefy(t, dir, "list")
	assert.ErrorContains(t, err, "log.format")
}

func TestImportCSVMerges(t *testing.T) {
	dir := initDir(t)
	short := addedID(t, mustRun(t, dir, "add", "3.20", "-c", "Food", "-n", "Coffee", "-d", "2025-06-02"))
	mustRun(t, dir, "add", "8", "-c", "Bills", "-d", "2025-06-03")
	path := filepath.Join(dir, "txns.csv")
	mustRun(t, dir, "export", "--format", "csv", "-o", path)

	mustRun(t, dir, "delete", short)
	out := mustRun(t, dir, "import", "--format", "csv", path)
	assert.Contains(t, out, "Merged 1 transactions (1 already present)")

	out = mustRun(t, dir, "list")
	assert.Contains(t, out, "Coffee")
	assert.Contains(t, out, short)
	assert.Contains(t, out, "Food", "category id survives the round trip")
}
