package domain

import "testing"

func TestRepairTicketsBackfillsMissingFields(t *testing.T) {
	tickets := []Ticket{
		{ID: "b", Title: "second", CreatedAt: 2000},
		{ID: "a", Title: "first", CreatedAt: 1000},
	}

	repaired, changed := RepairTickets(tickets)
	if !changed {
		t.Fatal("expected repair to report changes")
	}
	for _, ticket := range repaired {
		if ticket.Number == 0 {
			t.Errorf("ticket %s still has no number", ticket.ID)
		}
		if ticket.Priority == "" {
			t.Errorf("ticket %s still has no priority", ticket.ID)
		}
		if ticket.Comments == nil {
			t.Errorf("ticket %s still has nil comments", ticket.ID)
		}
	}

	// Numbers follow creation order: oldest ticket gets the lowest number.
	byID := indexByID(repaired)
	if byID["a"].Number != 1 || byID["b"].Number != 2 {
		t.Errorf("numbers = a:%d b:%d, want a:1 b:2", byID["a"].Number, byID["b"].Number)
	}
	if byID["a"].Priority != PriorityNormal {
		t.Errorf("priority = %q, want %q", byID["a"].Priority, PriorityNormal)
	}

	// Result is in display order, newest first.
	if repaired[0].ID != "b" {
		t.Errorf("display order starts with %s, want b", repaired[0].ID)
	}
}

func TestRepairTicketsContinuesFromExistingMax(t *testing.T) {
	tickets := []Ticket{
		{ID: "kept", Number: 7, Priority: PriorityHigh, CreatedAt: 500, Comments: []Comment{}},
		{ID: "late", CreatedAt: 3000},
		{ID: "early", CreatedAt: 1000},
	}

	repaired, changed := RepairTickets(tickets)
	if !changed {
		t.Fatal("expected repair to report changes")
	}
	byID := indexByID(repaired)
	if byID["kept"].Number != 7 {
		t.Errorf("existing number rewritten: got %d", byID["kept"].Number)
	}
	if byID["early"].Number != 8 || byID["late"].Number != 9 {
		t.Errorf("numbers = early:%d late:%d, want early:8 late:9",
			byID["early"].Number, byID["late"].Number)
	}

	seen := map[int]bool{}
	for _, ticket := range repaired {
		if seen[ticket.Number] {
			t.Fatalf("duplicate number %d", ticket.Number)
		}
		seen[ticket.Number] = true
	}
}

func TestRepairTicketsNoChangesNeeded(t *testing.T) {
	tickets := []Ticket{
		{ID: "a", Number: 1, Priority: PriorityLow, CreatedAt: 1, Comments: []Comment{}},
	}
	repaired, changed := RepairTickets(tickets)
	if changed {
		t.Error("expected no changes for a complete ticket")
	}
	if len(repaired) != 1 || repaired[0].ID != "a" {
		t.Fatalf("unexpected result: %+v", repaired)
	}
}

func TestRepairTicketsDoesNotMutateInput(t *testing.T) {
	tickets := []Ticket{{ID: "a", CreatedAt: 1}}
	_, _ = RepairTickets(tickets)
	if tickets[0].Number != 0 || tickets[0].Priority != "" || tickets[0].Comments != nil {
		t.Error("input slice was mutated")
	}
}

func TestNextNumber(t *testing.T) {
	if got := NextNumber(nil); got != 1 {
		t.Errorf("NextNumber(nil) = %d, want 1", got)
	}
	tickets := []Ticket{{Number: 3}, {Number: 1}}
	if got := NextNumber(tickets); got != 4 {
		t.Errorf("NextNumber = %d, want 4", got)
	}
}

func indexByID(tickets []Ticket) map[string]Ticket {
	out := make(map[string]Ticket, len(tickets))
	for _, t := range tickets {
		out[t.ID] = t
	}
	return out
}
