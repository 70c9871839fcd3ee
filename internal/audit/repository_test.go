package audit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/nerrad567/devicedash/internal/infrastructure/database"
	"github.com/nerrad567/devicedash/migrations"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, database.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Migrate(ctx, migrations.FS); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return NewSQLiteRepository(db.DB)
}

func TestCreateFillsDefaults(t *testing.T) {
	repo := newTestRepo(t)

	entry := &Entry{Action: ActionRegister, EntityType: EntityDevice, EntityID: "dev-1"}
	if err := repo.Create(context.Background(), entry); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !strings.HasPrefix(entry.ID, "aud-") {
		t.Errorf("ID = %q, want aud- prefix", entry.ID)
	}
	if entry.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if entry.Outcome != OutcomeOK {
		t.Errorf("Outcome = %q, want ok", entry.Outcome)
	}
}

func TestCreateRejectsIncompleteEntry(t *testing.T) {
	repo := newTestRepo(t)

	err := repo.Create(context.Background(), &Entry{Action: ActionDelete})
	if !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("Create() error = %v, want ErrInvalidEntry", err)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

	entries := []*Entry{
		{Action: ActionRegister, EntityType: EntityDevice, EntityID: "a", CreatedAt: base},
		{Action: ActionCommand, EntityType: EntityDevice, EntityID: "a", Outcome: OutcomeFailed,
			Details: map[string]any{"error": "offline"}, CreatedAt: base.Add(time.Minute)},
		{Action: ActionPublish, EntityType: EntityTopic, EntityID: "test/topic", CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	all, err := repo.List(ctx, Filter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if all.Total != 3 || len(all.Entries) != 3 {
		t.Fatalf("List() total=%d len=%d, want 3", all.Total, len(all.Entries))
	}
	if all.Entries[0].Action != ActionPublish {
		t.Errorf("first entry = %q, want most recent (publish)", all.Entries[0].Action)
	}
	if all.Limit != defaultLimit {
		t.Errorf("Limit = %d, want %d", all.Limit, defaultLimit)
	}

	failed, err := repo.List(ctx, Filter{EntityID: "a", Outcome: OutcomeFailed})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if failed.Total != 1 {
		t.Fatalf("failed total = %d, want 1", failed.Total)
	}
	if got := failed.Entries[0].Details["error"]; got != "offline" {
		t.Errorf("details error = %v, want offline", got)
	}
}

func TestListClampsPaging(t *testing.T) {
	repo := newTestRepo(t)

	res, err := repo.List(context.Background(), Filter{Limit: 1000, Offset: -5})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if res.Limit != maxLimit || res.Offset != 0 {
		t.Errorf("paging = (%d, %d), want (%d, 0)", res.Limit, res.Offset, maxLimit)
	}
	if res.Entries == nil {
		t.Error("Entries should be an empty slice, not nil")
	}
}
