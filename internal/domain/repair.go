package domain

import "sort"

// RepairTickets backfills fields that older persisted or imported data may
// lack: tickets without a number get sequential numbers (sorted by creation
// time, continuing from the existing maximum), a missing priority defaults to
// Normal, and a nil comment thread becomes an empty one. The result is in
// display order (newest first). The boolean reports whether anything changed,
// so callers persist the repaired collection exactly once.
func RepairTickets(tickets []Ticket) ([]Ticket, bool) {
	changed := false
	repaired := CloneTickets(tickets)
	if repaired == nil {
		repaired = []Ticket{}
	}

	maxNumber := 0
	for i := range repaired {
		if repaired[i].Number > maxNumber {
			maxNumber = repaired[i].Number
		}
	}

	missing := make([]*Ticket, 0)
	for i := range repaired {
		if repaired[i].Number == 0 {
			missing = append(missing, &repaired[i])
		}
		if repaired[i].Priority == "" {
			repaired[i].Priority = PriorityNormal
			changed = true
		}
		if repaired[i].Comments == nil {
			repaired[i].Comments = []Comment{}
			changed = true
		}
	}

	if len(missing) > 0 {
		sort.SliceStable(missing, func(i, j int) bool {
			return missing[i].CreatedAt < missing[j].CreatedAt
		})
		for _, t := range missing {
			maxNumber++
			t.Number = maxNumber
		}
		changed = true
	}

	if changed {
		sort.SliceStable(repaired, func(i, j int) bool {
			return repaired[i].CreatedAt > repaired[j].CreatedAt
		})
	}
	return repaired, changed
}

// NextNumber computes the number for a newly created ticket.
func NextNumber(tickets []Ticket) int {
	max := 0
	for i := range tickets {
		if tickets[i].Number > max {
			max = tickets[i].Number
		}
	}
	return max + 1
}
