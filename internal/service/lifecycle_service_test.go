package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/config"
	"github.com/spec-kit/ticketflow/internal/domain"
	"github.com/spec-kit/ticketflow/internal/events"
	"github.com/spec-kit/ticketflow/internal/store"
	"github.com/spec-kit/ticketflow/pkg/util"
)

var admin = Identity{Name: "Admin", IsAdmin: true}

func newTestLifecycle(t *testing.T) *LifecycleService {
	t.Helper()
	snapshots := store.NewSnapshotStore(store.NewMemoryKV(),
		config.StoreConfig{KeyPrefix: "wticketflow_", LegacyPrefix: "ticketflow_"},
		zap.NewNop())
	lifecycle, err := NewLifecycleService(context.Background(), snapshots, events.NewInMemoryDispatcher(), zap.NewNop())
	if err != nil {
		t.Fatalf("new lifecycle: %v", err)
	}
	return lifecycle
}

func createTicket(t *testing.T, s *LifecycleService, title string) domain.Ticket {
	t.Helper()
	ticket, err := s.CreateTicket(context.Background(), CreateTicketInput{
		Title:       title,
		Description: "description of " + title,
		CreatorID:   "u1",
		CreatorName: "Ana",
		Topic:       domain.TopicBug,
		Priority:    domain.PriorityNormal,
	})
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	return ticket
}

func TestCreateTicketAssignsSequentialNumbers(t *testing.T) {
	s := newTestLifecycle(t)

	first := createTicket(t, s, "first")
	if first.Number != 1 {
		t.Fatalf("first number = %d, want 1", first.Number)
	}
	second := createTicket(t, s, "second")
	if second.Number != 2 {
		t.Fatalf("second number = %d, want 2", second.Number)
	}

	if first.Status != domain.TicketStatusOpen {
		t.Errorf("status = %q, want open", first.Status)
	}
	if first.Comments == nil || len(first.Comments) != 0 {
		t.Errorf("comments = %v, want empty slice", first.Comments)
	}
	if first.CreatedAt == 0 {
		t.Error("createdAt not set")
	}

	// Newest first in the collection.
	tickets := s.Tickets()
	if tickets[0].ID != second.ID {
		t.Errorf("display order starts with %s, want the newest ticket", tickets[0].ID)
	}
}

func TestCreateTicketNumbersStayUniqueAndIncreasing(t *testing.T) {
	s := newTestLifecycle(t)
	prev := 0
	for i := 0; i < 20; i++ {
		ticket := createTicket(t, s, "ticket")
		if ticket.Number <= prev {
			t.Fatalf("number %d not strictly increasing after %d", ticket.Number, prev)
		}
		prev = ticket.Number
	}
}

func TestCreateTicketValidation(t *testing.T) {
	s := newTestLifecycle(t)
	ctx := context.Background()

	_, err := s.CreateTicket(ctx, CreateTicketInput{Title: " ", Description: "x", Topic: domain.TopicBug})
	if err == nil {
		t.Fatal("blank title accepted")
	}
	_, err = s.CreateTicket(ctx, CreateTicketInput{Title: "x", Description: "y", Topic: "Nonsense"})
	if err == nil {
		t.Fatal("unknown topic accepted")
	}
	if len(s.Tickets()) != 0 {
		t.Fatal("failed create mutated state")
	}
}

func TestResolveThenReopenRestoresOpenState(t *testing.T) {
	s := newTestLifecycle(t)
	ctx := context.Background()
	ticket := createTicket(t, s, "flaky vpn")

	resolved, err := s.ResolveTicket(ctx, ticket.ID, "restarted the tunnel", admin)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != domain.TicketStatusResolved {
		t.Fatalf("status = %q, want resolved", resolved.Status)
	}
	if resolved.ResolvedAt == 0 || resolved.ResolutionNote != "restarted the tunnel" {
		t.Fatalf("resolution fields not set: %+v", resolved)
	}

	reopened, err := s.ReopenTicket(ctx, ticket.ID, admin)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != domain.TicketStatusOpen {
		t.Fatalf("status = %q, want open", reopened.Status)
	}
	if reopened.ResolvedAt != 0 || reopened.ResolutionNote != "" {
		t.Fatalf("resolution fields not cleared: %+v", reopened)
	}
}

func TestResolveRequiresAdminCapability(t *testing.T) {
	s := newTestLifecycle(t)
	ctx := context.Background()
	ticket := createTicket(t, s, "broken printer")

	user := Identity{Name: "Ana", UserID: "u1"}
	if _, err := s.ResolveTicket(ctx, ticket.ID, "", user); !isForbidden(err) {
		t.Fatalf("resolve by non-admin: err = %v, want forbidden", err)
	}
	if _, err := s.ReopenTicket(ctx, ticket.ID, user); !isForbidden(err) {
		t.Fatalf("reopen by non-admin: err = %v, want forbidden", err)
	}
	if s.Tickets()[0].Status != domain.TicketStatusOpen {
		t.Fatal("non-admin call mutated the ticket")
	}
}

func TestResolveAlreadyResolvedIsNoOp(t *testing.T) {
	s := newTestLifecycle(t)
	ctx := context.Background()
	ticket := createTicket(t, s, "duplicate submit")

	first, err := s.ResolveTicket(ctx, ticket.ID, "fixed", admin)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	second, err := s.ResolveTicket(ctx, ticket.ID, "other note", admin)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.ResolvedAt != first.ResolvedAt || second.ResolutionNote != first.ResolutionNote {
		t.Fatalf("re-resolution changed the ticket: %+v vs %+v", second, first)
	}
}

func TestAddCommentAppendsWithExplicitAuthor(t *testing.T) {
	s := newTestLifecycle(t)
	ctx := context.Background()
	ticket := createTicket(t, s, "slow dashboard")

	userComment, err := s.AddComment(ctx, ticket.ID, "still happening", Identity{Name: "Ana", UserID: "u1"})
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if userComment.AuthorName != "Ana" || userComment.IsAdmin {
		t.Fatalf("comment author = %+v", userComment)
	}

	adminComment, err := s.AddComment(ctx, ticket.ID, "looking into it", admin)
	if err != nil {
		t.Fatalf("add admin comment: %v", err)
	}
	if adminComment.AuthorName != "Admin" || !adminComment.IsAdmin {
		t.Fatalf("admin comment author = %+v", adminComment)
	}

	comments := s.Tickets()[0].Comments
	if len(comments) != 2 {
		t.Fatalf("comment count = %d, want 2", len(comments))
	}
	if comments[0].ID != userComment.ID || comments[1].ID != adminComment.ID {
		t.Fatal("comments out of insertion order")
	}

	// Ticket status is unaffected by commenting.
	if s.Tickets()[0].Status != domain.TicketStatusOpen {
		t.Fatal("comment changed ticket status")
	}
}

func TestAddCommentAllowedOnResolvedTicket(t *testing.T) {
	s := newTestLifecycle(t)
	ctx := context.Background()
	ticket := createTicket(t, s, "resolved thread")

	if _, err := s.ResolveTicket(ctx, ticket.ID, "", admin); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if _, err := s.AddComment(ctx, ticket.ID, "thanks!", Identity{Name: "Ana", UserID: "u1"}); err != nil {
		t.Fatalf("comment on resolved ticket: %v", err)
	}
}

func TestUserAndSubjectManagement(t *testing.T) {
	s := newTestLifecycle(t)
	ctx := context.Background()

	user, err := s.AddUser(ctx, "Ana")
	if err != nil {
		t.Fatalf("add user: %v", err)
	}
	subject, err := s.AddSubject(ctx, "VPN access")
	if err != nil {
		t.Fatalf("add subject: %v", err)
	}

	ticket, err := s.CreateTicket(ctx, CreateTicketInput{
		Title:       subject.Title,
		Description: "need the VPN profile",
		CreatorID:   user.ID,
		CreatorName: user.Name,
		Topic:       domain.TopicAccess,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if ticket.Priority != domain.PriorityNormal {
		t.Fatalf("default priority = %q, want Normal", ticket.Priority)
	}

	// Deleting the creator does not cascade; the denormalized name stays.
	if err := s.DeleteUser(ctx, user.ID); err != nil {
		t.Fatalf("delete user: %v", err)
	}
	if err := s.DeleteSubject(ctx, subject.ID); err != nil {
		t.Fatalf("delete subject: %v", err)
	}
	kept := s.Tickets()[0]
	if kept.CreatorName != "Ana" || kept.CreatorID != user.ID {
		t.Fatalf("creator fields lost: %+v", kept)
	}
	if len(s.Users()) != 0 || len(s.Subjects()) != 0 {
		t.Fatal("collections not emptied")
	}
}

func TestMutationsPersistAcrossRestart(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	cfg := config.StoreConfig{KeyPrefix: "wticketflow_", LegacyPrefix: "ticketflow_"}
	snapshots := store.NewSnapshotStore(kv, cfg, zap.NewNop())

	s, err := NewLifecycleService(ctx, snapshots, events.NewInMemoryDispatcher(), zap.NewNop())
	if err != nil {
		t.Fatalf("new lifecycle: %v", err)
	}
	ticket := createTicket(t, s, "survives restart")
	if _, err := s.ResolveTicket(ctx, ticket.ID, "done", admin); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// A fresh engine over the same backend sees the mutations.
	restarted, err := NewLifecycleService(ctx, store.NewSnapshotStore(kv, cfg, zap.NewNop()), events.NewInMemoryDispatcher(), zap.NewNop())
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	tickets := restarted.Tickets()
	if len(tickets) != 1 || tickets[0].Status != domain.TicketStatusResolved {
		t.Fatalf("restarted state = %+v", tickets)
	}
}

func TestLifecycleEmitsEvents(t *testing.T) {
	ctx := context.Background()
	snapshots := store.NewSnapshotStore(store.NewMemoryKV(),
		config.StoreConfig{KeyPrefix: "wticketflow_"}, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher()

	var seen []events.EventType
	record := func(ctx context.Context, event events.Event) error {
		seen = append(seen, event.Type)
		return nil
	}
	dispatcher.Subscribe(events.EventTicketCreated, record)
	dispatcher.Subscribe(events.EventTicketResolved, record)
	dispatcher.Subscribe(events.EventTicketReopened, record)
	dispatcher.Subscribe(events.EventCommentAdded, record)

	s, err := NewLifecycleService(ctx, snapshots, dispatcher, zap.NewNop())
	if err != nil {
		t.Fatalf("new lifecycle: %v", err)
	}
	ticket := createTicket(t, s, "eventful")
	if _, err := s.AddComment(ctx, ticket.ID, "hello", admin); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ResolveTicket(ctx, ticket.ID, "", admin); err != nil {
		t.Fatal(err)
	}
	if _, err := s.ReopenTicket(ctx, ticket.ID, admin); err != nil {
		t.Fatal(err)
	}

	want := []events.EventType{
		events.EventTicketCreated,
		events.EventCommentAdded,
		events.EventTicketResolved,
		events.EventTicketReopened,
	}
	if len(seen) != len(want) {
		t.Fatalf("events = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("events = %v, want %v", seen, want)
		}
	}
}

func isForbidden(err error) bool {
	var domainErr *util.DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == "FORBIDDEN"
}
