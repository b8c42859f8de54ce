package journal

import (
	"database/sql"
	"testing"
	"time"
)

// SetupTestJournal creates a migrated in-memory journal for testing. Its
// clock starts at a fixed instant and advances one second per call.
func SetupTestJournal(t *testing.T) *Journal {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	j, err := New(db)
	if err != nil {
		db.Close()
		t.Fatalf("failed to migrate test database: %v", err)
	}
	clock := time.Date(2024, 6, 30, 10, 0, 0, 0, time.UTC)
	j.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	t.Cleanup(func() {
		if err := j.Close(); err != nil {
			t.Errorf("failed to close test journal: %v", err)
		}
	})
	return j
}
