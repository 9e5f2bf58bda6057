package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/ticketflow/internal/domain"
	"github.com/spec-kit/ticketflow/internal/events"
	"github.com/spec-kit/ticketflow/internal/store"
	"github.com/spec-kit/ticketflow/pkg/util"
)

// Identity is the resolved caller identity. It is always passed explicitly
// into lifecycle operations; the engine never reaches into session state.
type Identity struct {
	Name    string
	UserID  string
	IsAdmin bool
}

// CreateTicketInput describes ticket creation payload. The caller resolves
// creator name and id before invoking the engine.
type CreateTicketInput struct {
	Title       string
	Description string
	CreatorID   string
	CreatorName string
	Topic       domain.TicketTopic
	Priority    domain.TicketPriority
}

// LifecycleService owns the canonical snapshot and every mutation of it.
// All operations are synchronous; the snapshot is persisted after each
// mutation and derived views are recomputed by the query package from the
// tickets it returns.
type LifecycleService struct {
	mu         sync.Mutex
	snap       domain.Snapshot
	store      *store.SnapshotStore
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewLifecycleService loads the persisted snapshot (running the repair pass)
// and returns the engine.
func NewLifecycleService(ctx context.Context, snapshots *store.SnapshotStore, dispatcher events.Dispatcher, logger *zap.Logger) (*LifecycleService, error) {
	snap, err := snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}
	return &LifecycleService{
		snap:       snap,
		store:      snapshots,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// Snapshot returns a deep copy of the full application state.
func (s *LifecycleService) Snapshot() domain.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.Clone()
}

// Tickets returns a deep copy of the ticket collection in display order.
func (s *LifecycleService) Tickets() []domain.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneTickets(s.snap.Tickets)
}

// Users returns the user collection.
func (s *LifecycleService) Users() []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.User, len(s.snap.Users))
	copy(out, s.snap.Users)
	return out
}

// Subjects returns the subject collection.
func (s *LifecycleService) Subjects() []domain.Subject {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Subject, len(s.snap.Subjects))
	copy(out, s.snap.Subjects)
	return out
}

// FindUser looks up a user by id.
func (s *LifecycleService) FindUser(id string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap.FindUser(id)
}

// CreateTicket allocates an id and the next sequential number, prepends the
// new ticket to the collection and persists the snapshot.
func (s *LifecycleService) CreateTicket(ctx context.Context, input CreateTicketInput) (domain.Ticket, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if title == "" || description == "" {
		return domain.Ticket{}, util.NewValidationError("title and description required", nil)
	}
	if !domain.ValidTopic(input.Topic) {
		return domain.Ticket{}, util.NewValidationError("unknown topic", map[string]any{"topic": input.Topic})
	}
	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityNormal
	}
	if !domain.ValidPriority(priority) {
		return domain.Ticket{}, util.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}

	s.mu.Lock()
	ticket := domain.Ticket{
		ID:          util.NewID(),
		Number:      domain.NextNumber(s.snap.Tickets),
		Title:       title,
		Description: description,
		CreatorID:   input.CreatorID,
		CreatorName: input.CreatorName,
		Topic:       input.Topic,
		Priority:    priority,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   s.now().UnixMilli(),
		Comments:    []domain.Comment{},
	}
	s.snap.Tickets = append([]domain.Ticket{ticket}, s.snap.Tickets...)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{Name: input.CreatorName, UserID: input.CreatorID},
		Payload: events.TicketCreatedPayload{
			Number:   ticket.Number,
			Title:    ticket.Title,
			Topic:    ticket.Topic,
			Priority: ticket.Priority,
		},
	})
	return ticket, nil
}

// ResolveTicket transitions a ticket to resolved. Administrator capability is
// required. Resolving an already-resolved ticket is a silent no-op.
func (s *LifecycleService) ResolveTicket(ctx context.Context, ticketID, note string, actor Identity) (domain.Ticket, error) {
	if !actor.IsAdmin {
		return domain.Ticket{}, util.NewForbidden("administrator capability required")
	}

	s.mu.Lock()
	ticket := s.findTicketLocked(ticketID)
	if ticket == nil {
		s.mu.Unlock()
		return domain.Ticket{}, util.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	if ticket.Status == domain.TicketStatusResolved {
		resolved := ticket.Clone()
		s.mu.Unlock()
		return resolved, nil
	}
	ticket.Status = domain.TicketStatusResolved
	ticket.ResolvedAt = s.now().UnixMilli()
	ticket.ResolutionNote = strings.TrimSpace(note)
	resolved := ticket.Clone()
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{
		Type:     events.EventTicketResolved,
		TicketID: resolved.ID,
		Actor:    events.Actor{Name: actor.Name, UserID: actor.UserID, IsAdmin: true},
		Payload: events.TicketResolvedPayload{
			Number:         resolved.Number,
			ResolutionNote: resolved.ResolutionNote,
		},
	})
	return resolved, nil
}

// ReopenTicket transitions a resolved ticket back to open, clearing the
// resolution timestamp and note. Administrator capability is required.
func (s *LifecycleService) ReopenTicket(ctx context.Context, ticketID string, actor Identity) (domain.Ticket, error) {
	if !actor.IsAdmin {
		return domain.Ticket{}, util.NewForbidden("administrator capability required")
	}

	s.mu.Lock()
	ticket := s.findTicketLocked(ticketID)
	if ticket == nil {
		s.mu.Unlock()
		return domain.Ticket{}, util.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	if ticket.Status == domain.TicketStatusOpen {
		reopened := ticket.Clone()
		s.mu.Unlock()
		return reopened, nil
	}
	ticket.Status = domain.TicketStatusOpen
	ticket.ResolvedAt = 0
	ticket.ResolutionNote = ""
	reopened := ticket.Clone()
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{
		Type:     events.EventTicketReopened,
		TicketID: reopened.ID,
		Actor:    events.Actor{Name: actor.Name, UserID: actor.UserID, IsAdmin: true},
		Payload:  events.TicketReopenedPayload{Number: reopened.Number},
	})
	return reopened, nil
}

// AddComment appends a comment to the ticket's thread. The author identity
// is supplied by the caller. Comments are allowed on resolved tickets; the
// thread stays writable across reopen cycles.
func (s *LifecycleService) AddComment(ctx context.Context, ticketID, text string, author Identity) (domain.Comment, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.Comment{}, util.NewValidationError("comment text required", nil)
	}

	s.mu.Lock()
	ticket := s.findTicketLocked(ticketID)
	if ticket == nil {
		s.mu.Unlock()
		return domain.Comment{}, util.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	comment := domain.Comment{
		ID:         util.NewID(),
		Text:       text,
		AuthorName: author.Name,
		IsAdmin:    author.IsAdmin,
		CreatedAt:  s.now().UnixMilli(),
	}
	ticket.Comments = append(ticket.Comments, comment)
	s.persistLocked(ctx)
	s.mu.Unlock()

	s.publish(ctx, events.Event{
		Type:     events.EventCommentAdded,
		TicketID: ticketID,
		Actor:    events.Actor{Name: author.Name, UserID: author.UserID, IsAdmin: author.IsAdmin},
		Payload: events.CommentAddedPayload{
			CommentID:   comment.ID,
			AuthorName:  comment.AuthorName,
			BodyPreview: preview(comment.Text, 120),
		},
	})
	return comment, nil
}

// AttachInsight stores an advisory insight on the ticket so it is not
// requested again.
func (s *LifecycleService) AttachInsight(ctx context.Context, ticketID, insight string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ticket := s.findTicketLocked(ticketID)
	if ticket == nil {
		return util.NewNotFound("ticket", map[string]any{"id": ticketID})
	}
	ticket.AISolution = insight
	s.persistLocked(ctx)
	return nil
}

// AddUser registers a new user.
func (s *LifecycleService) AddUser(ctx context.Context, name string) (domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.User{}, util.NewValidationError("user name required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	user := domain.User{ID: util.NewID(), Name: name}
	s.snap.Users = append(s.snap.Users, user)
	s.persistLocked(ctx)
	return user, nil
}

// DeleteUser removes a user. Tickets created by the user keep their
// denormalized creator name.
func (s *LifecycleService) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, u := range s.snap.Users {
		if u.ID == id {
			s.snap.Users = append(s.snap.Users[:i], s.snap.Users[i+1:]...)
			s.persistLocked(ctx)
			return nil
		}
	}
	return util.NewNotFound("user", map[string]any{"id": id})
}

// AddSubject registers a new subject label.
func (s *LifecycleService) AddSubject(ctx context.Context, title string) (domain.Subject, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Subject{}, util.NewValidationError("subject title required", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	subject := domain.Subject{ID: util.NewID(), Title: title}
	s.snap.Subjects = append(s.snap.Subjects, subject)
	s.persistLocked(ctx)
	return subject, nil
}

// DeleteSubject removes a subject label. Existing tickets are untouched.
func (s *LifecycleService) DeleteSubject(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.snap.Subjects {
		if sub.ID == id {
			s.snap.Subjects = append(s.snap.Subjects[:i], s.snap.Subjects[i+1:]...)
			s.persistLocked(ctx)
			return nil
		}
	}
	return util.NewNotFound("subject", map[string]any{"id": id})
}

// ReplaceSnapshot swaps in a new snapshot wholesale, applying the repair
// pass first. Used by the import path; nothing from the previous state
// survives.
func (s *LifecycleService) ReplaceSnapshot(ctx context.Context, snap domain.Snapshot) (domain.Snapshot, error) {
	repaired, _ := domain.RepairTickets(snap.Tickets)
	snap.Tickets = repaired
	if snap.Users == nil {
		snap.Users = []domain.User{}
	}
	if snap.Subjects == nil {
		snap.Subjects = []domain.Subject{}
	}

	s.mu.Lock()
	s.snap = snap.Clone()
	s.persistLocked(ctx)
	replaced := s.snap.Clone()
	s.mu.Unlock()

	s.publish(ctx, events.Event{
		Type: events.EventDataImported,
		Payload: events.DataImportedPayload{
			Tickets:  len(replaced.Tickets),
			Users:    len(replaced.Users),
			Subjects: len(replaced.Subjects),
		},
	})
	return replaced, nil
}

// findTicketLocked returns a pointer into the canonical slice; callers hold
// the mutex and clone before releasing it.
func (s *LifecycleService) findTicketLocked(id string) *domain.Ticket {
	for i := range s.snap.Tickets {
		if s.snap.Tickets[i].ID == id {
			return &s.snap.Tickets[i]
		}
	}
	return nil
}

// persistLocked writes the snapshot after a mutation. A failed write is
// logged and otherwise ignored; durable-write guarantees are out of scope.
func (s *LifecycleService) persistLocked(ctx context.Context) {
	if err := s.store.Save(ctx, s.snap); err != nil {
		s.logger.Error("snapshot write failed", zap.Error(err))
	}
}

func (s *LifecycleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = util.NewID()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func preview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}
