package store

import (
	"context"
	"encoding/json"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/config"
	"github.com/spec-kit/ticketflow/internal/domain"
)

func testStoreConfig() config.StoreConfig {
	return config.StoreConfig{KeyPrefix: "wticketflow_", LegacyPrefix: "ticketflow_"}
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	snapshots := NewSnapshotStore(NewMemoryKV(), testStoreConfig(), zap.NewNop())

	snap := domain.Snapshot{
		Tickets: []domain.Ticket{{
			ID: "t1", Number: 1, Title: "broken build",
			Priority: domain.PriorityHigh, Status: domain.TicketStatusOpen,
			CreatedAt: 1000, Comments: []domain.Comment{},
		}},
		Users:    []domain.User{{ID: "u1", Name: "Ana"}},
		Subjects: []domain.Subject{{ID: "s1", Title: "VPN"}},
	}
	if err := snapshots.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := snapshots.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Tickets) != 1 || loaded.Tickets[0].ID != "t1" {
		t.Fatalf("tickets = %+v", loaded.Tickets)
	}
	if len(loaded.Users) != 1 || loaded.Users[0].Name != "Ana" {
		t.Fatalf("users = %+v", loaded.Users)
	}
	if len(loaded.Subjects) != 1 || loaded.Subjects[0].Title != "VPN" {
		t.Fatalf("subjects = %+v", loaded.Subjects)
	}
}

func TestSnapshotStoreLoadEmpty(t *testing.T) {
	snapshots := NewSnapshotStore(NewMemoryKV(), testStoreConfig(), zap.NewNop())
	snap, err := snapshots.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Tickets == nil || snap.Users == nil || snap.Subjects == nil {
		t.Fatal("empty load must yield empty, non-nil collections")
	}
	if len(snap.Tickets)+len(snap.Users)+len(snap.Subjects) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}

func TestSnapshotStoreRepairsOnLoadAndPersistsOnce(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	snapshots := NewSnapshotStore(kv, testStoreConfig(), zap.NewNop())

	// A legacy record: no number, no priority, no comments.
	legacy := []map[string]any{{"id": "t1", "title": "old", "createdAt": 1000}}
	raw, _ := json.Marshal(legacy)
	if err := kv.Set(ctx, "wticketflow_tickets", raw); err != nil {
		t.Fatal(err)
	}

	snap, err := snapshots.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	ticket := snap.Tickets[0]
	if ticket.Number != 1 || ticket.Priority != domain.PriorityNormal || ticket.Comments == nil {
		t.Fatalf("repair incomplete: %+v", ticket)
	}

	// The repaired collection is written back, so a second load sees a
	// complete record and does not repair again.
	stored, err := kv.Get(ctx, "wticketflow_tickets")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var persisted []domain.Ticket
	if err := json.Unmarshal(stored, &persisted); err != nil {
		t.Fatalf("unmarshal persisted: %v", err)
	}
	if persisted[0].Number != 1 {
		t.Fatalf("persisted ticket not repaired: %+v", persisted[0])
	}
}

func TestSnapshotStoreMigratesLegacyKeys(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	snapshots := NewSnapshotStore(kv, testStoreConfig(), zap.NewNop())

	tickets, _ := json.Marshal([]domain.Ticket{{
		ID: "t1", Number: 1, Title: "legacy", Priority: domain.PriorityLow,
		Status: domain.TicketStatusOpen, CreatedAt: 1, Comments: []domain.Comment{},
	}})
	users, _ := json.Marshal([]domain.User{{ID: "u1", Name: "Ana"}})
	if err := kv.Set(ctx, "ticketflow_tickets", tickets); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(ctx, "ticketflow_users", users); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(ctx, "ticketflow_theme", []byte("dark")); err != nil {
		t.Fatal(err)
	}

	snap, err := snapshots.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(snap.Tickets) != 1 || snap.Tickets[0].Title != "legacy" {
		t.Fatalf("tickets not migrated: %+v", snap.Tickets)
	}
	if len(snap.Users) != 1 {
		t.Fatalf("users not migrated: %+v", snap.Users)
	}
	if theme := snapshots.Theme(ctx); theme != "dark" {
		t.Fatalf("theme = %q, want dark", theme)
	}
}

func TestSnapshotStoreMigrationDoesNotOverwriteNewKeys(t *testing.T) {
	ctx := context.Background()
	kv := NewMemoryKV()
	snapshots := NewSnapshotStore(kv, testStoreConfig(), zap.NewNop())

	oldTickets, _ := json.Marshal([]domain.Ticket{{ID: "old", Number: 1, Priority: domain.PriorityLow, Comments: []domain.Comment{}}})
	newTickets, _ := json.Marshal([]domain.Ticket{{ID: "new", Number: 1, Priority: domain.PriorityLow, Comments: []domain.Comment{}}})
	if err := kv.Set(ctx, "ticketflow_tickets", oldTickets); err != nil {
		t.Fatal(err)
	}
	if err := kv.Set(ctx, "wticketflow_tickets", newTickets); err != nil {
		t.Fatal(err)
	}

	snap, err := snapshots.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if snap.Tickets[0].ID != "new" {
		t.Fatalf("migration overwrote new keys: %+v", snap.Tickets)
	}
}

func TestSnapshotStoreSettings(t *testing.T) {
	ctx := context.Background()
	snapshots := NewSnapshotStore(NewMemoryKV(), testStoreConfig(), zap.NewNop())

	if theme := snapshots.Theme(ctx); theme != "light" {
		t.Fatalf("default theme = %q, want light", theme)
	}
	if snapshots.AIEnabled(ctx) {
		t.Fatal("advisory flag should default to off")
	}

	if err := snapshots.SetTheme(ctx, "dark"); err != nil {
		t.Fatalf("set theme: %v", err)
	}
	if err := snapshots.SetTheme(ctx, "blue"); err == nil {
		t.Fatal("invalid theme accepted")
	}
	if theme := snapshots.Theme(ctx); theme != "dark" {
		t.Fatalf("theme = %q, want dark", theme)
	}

	if err := snapshots.SetAIEnabled(ctx, true); err != nil {
		t.Fatalf("set flag: %v", err)
	}
	if !snapshots.AIEnabled(ctx) {
		t.Fatal("advisory flag not persisted")
	}
}
