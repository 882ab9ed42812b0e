package backup

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

func setupTestDB(t *testing.T) string {
	dbPath := filepath.Join(t.TempDir(), "dayglow.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec(`CREATE TABLE kv (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		t.Fatalf("failed to create test table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO kv (key, value) VALUES ('dayglow.lastLogDate', '2026-10-18'), ('dayglow.theme', 'dark')`); err != nil {
		t.Fatalf("failed to insert test data: %v", err)
	}
	return dbPath
}

func useClock(t *testing.T, start time.Time) {
	t.Helper()
	old := nowFunc
	current := start
	nowFunc = func() time.Time {
		current = current.Add(time.Minute)
		return current
	}
	t.Cleanup(func() { nowFunc = old })
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)

	mgr := NewManager(dbPath)
	backupPath, err := mgr.Create()
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Dir(backupPath) != mgr.Dir() {
		t.Errorf("backup written to %s, want under %s", backupPath, mgr.Dir())
	}

	db, err := sql.Open("sqlite", backupPath)
	if err != nil {
		t.Fatalf("failed to open backup database: %v", err)
	}
	defer db.Close()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM kv").Scan(&count); err != nil {
		t.Fatalf("failed to query backup database: %v", err)
	}
	if count != 2 {
		t.Errorf("backup has %d rows, want 2", count)
	}
}

func TestCreateMissingDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(); err == nil {
		t.Error("Create should fail when the database does not exist")
	}
}

func TestCreateSameSecond(t *testing.T) {
	dbPath := setupTestDB(t)
	old := nowFunc
	nowFunc = func() time.Time { return time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC) }
	defer func() { nowFunc = old }()

	mgr := NewManager(dbPath)
	first, err := mgr.Create()
	if err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	second, err := mgr.Create()
	if err != nil {
		t.Fatalf("second Create failed: %v", err)
	}
	if first == second {
		t.Fatalf("both backups written to %s", first)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 2 {
		t.Errorf("List() returned %d backups, want 2", len(backups))
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "dayglow.db"))

	backups, err := mgr.List()
	if err != nil || len(backups) != 0 {
		t.Fatalf("List() on missing dir = %v, %v", backups, err)
	}

	if err := os.MkdirAll(mgr.Dir(), 0700); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"notes.txt", "dayglow-garbage.db", "dayglow-20261018-080000.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err = mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("List() returned %d backups, want 1", len(backups))
	}
	want := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	if !backups[0].Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", backups[0].Timestamp, want)
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	useClock(t, time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC))

	mgr := NewManager(dbPath)
	var newest string
	for i := 0; i < MaxBackups+3; i++ {
		path, err := mgr.Create()
		if err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
		newest = path
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != MaxBackups {
		t.Fatalf("kept %d backups, want %d", len(backups), MaxBackups)
	}
	if backups[0].Path != newest {
		t.Errorf("newest backup = %s, want %s", backups[0].Path, newest)
	}
	for i := 1; i < len(backups); i++ {
		if backups[i].Timestamp.After(backups[i-1].Timestamp) {
			t.Errorf("backups not sorted newest first at %d", i)
		}
	}
}
