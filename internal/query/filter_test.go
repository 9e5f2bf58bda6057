package query

import (
	"reflect"
	"testing"
	"time"

	"github.com/spec-kit/ticketflow/internal/domain"
)

func millis(value string) int64 {
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return parsed.UnixMilli()
}

func sampleTickets() []domain.Ticket {
	return []domain.Ticket{
		{
			ID: "t1", Number: 1, Title: "Login failure", Description: "cannot sign in",
			CreatorName: "Ana", Topic: domain.TopicAccess, Priority: domain.PriorityUrgent,
			Status: domain.TicketStatusOpen, CreatedAt: millis("2024-01-01T23:00:00Z"),
		},
		{
			ID: "t2", Number: 2, Title: "Printer jam", Description: "paper stuck",
			CreatorName: "Luis", Topic: domain.TopicOther, Priority: domain.PriorityLow,
			Status: domain.TicketStatusOpen, CreatedAt: millis("2024-01-02T00:00:01Z"),
		},
		{
			ID: "t3", Number: 3, Title: "Repo access", Description: "need write permission",
			CreatorName: "Ana", Topic: domain.TopicGitHub, Priority: domain.PriorityNormal,
			Status: domain.TicketStatusResolved, CreatedAt: millis("2024-01-03T10:00:00Z"),
			ResolvedAt: millis("2024-01-04T10:00:00Z"),
		},
	}
}

func TestFilterSearchMatchesAnyField(t *testing.T) {
	got := Filter(sampleTickets(), Criteria{Search: "login"})
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("search login matched %v", ids(got))
	}

	// Creator name is searched too.
	got = Filter(sampleTickets(), Criteria{Search: "ana"})
	if len(got) != 2 {
		t.Fatalf("search ana matched %v, want t1 and t3", ids(got))
	}
}

func TestFilterDateRangeIsInclusiveCalendarDays(t *testing.T) {
	got := Filter(sampleTickets(), Criteria{DateStart: "2024-01-01", DateEnd: "2024-01-01"})
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("date range matched %v, want only t1", ids(got))
	}
}

func TestFilterCombinesCriteriaWithAnd(t *testing.T) {
	criteria := Criteria{
		Status: string(domain.TicketStatusOpen),
		Topic:  string(domain.TopicAccess),
		Search: "sign",
	}
	got := Filter(sampleTickets(), criteria)
	if len(got) != 1 || got[0].ID != "t1" {
		t.Fatalf("combined criteria matched %v", ids(got))
	}

	criteria.Priority = string(domain.PriorityLow)
	if got := Filter(sampleTickets(), criteria); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", ids(got))
	}
}

func TestFilterWildcardsMatchEverything(t *testing.T) {
	got := Filter(sampleTickets(), Criteria{Status: All, Topic: "", Priority: All})
	if len(got) != 3 {
		t.Fatalf("wildcards matched %d tickets, want 3", len(got))
	}
}

func TestFilterIsIdempotent(t *testing.T) {
	criteria := Criteria{Status: string(domain.TicketStatusOpen), Search: "a"}
	once := Filter(sampleTickets(), criteria)
	twice := Filter(once, criteria)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("filter not idempotent: %v vs %v", ids(once), ids(twice))
	}
}

func TestComputeStatsIgnoresActiveFilter(t *testing.T) {
	tickets := sampleTickets()
	stats := ComputeStats(tickets)
	if stats.Open != 2 || stats.Resolved != 1 || stats.UrgentOpen != 1 {
		t.Fatalf("stats = %+v", stats)
	}

	// Stats over the full collection must not change when a display filter
	// narrows the view.
	filtered := Filter(tickets, Criteria{Search: "printer"})
	if len(filtered) != 1 {
		t.Fatalf("setup: filter matched %d", len(filtered))
	}
	if again := ComputeStats(tickets); again != stats {
		t.Fatalf("stats changed: %+v vs %+v", again, stats)
	}
}

func TestSortPendingByPriorityThenRecency(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: "low", Priority: domain.PriorityLow, CreatedAt: 300},
		{ID: "urgent-old", Priority: domain.PriorityUrgent, CreatedAt: 100},
		{ID: "urgent-new", Priority: domain.PriorityUrgent, CreatedAt: 200},
		{ID: "high", Priority: domain.PriorityHigh, CreatedAt: 400},
	}
	got := ids(SortPending(tickets))
	want := []string{"urgent-new", "urgent-old", "high", "low"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("pending order = %v, want %v", got, want)
	}
}

func TestSortResolvedByResolutionTime(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: "never", ResolvedAt: 0},
		{ID: "recent", ResolvedAt: 900},
		{ID: "older", ResolvedAt: 500},
	}
	got := ids(SortResolved(tickets))
	want := []string{"recent", "older", "never"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("resolved order = %v, want %v", got, want)
	}
}

func TestTicketsByCreator(t *testing.T) {
	tickets := []domain.Ticket{
		{ID: "a", CreatorID: "u1", CreatedAt: 100},
		{ID: "b", CreatorID: "u2", CreatedAt: 200},
		{ID: "c", CreatorID: "u1", CreatedAt: 300},
	}
	got := ids(TicketsByCreator(tickets, "u1"))
	want := []string{"c", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("my tickets = %v, want %v", got, want)
	}
}

func ids(tickets []domain.Ticket) []string {
	out := make([]string, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t.ID)
	}
	return out
}
