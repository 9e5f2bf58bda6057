package domain

// TicketStatus enumerates lifecycle states for tickets. The wire values match
// the historical export format, so older backups import unchanged.
type TicketStatus string

const (
	TicketStatusOpen     TicketStatus = "ABIERTO"
	TicketStatusResolved TicketStatus = "RESUELTO"
)

// TicketTopic enumerates the closed category set.
type TicketTopic string

const (
	TopicGitHub TicketTopic = "GitHub"
	TopicQuery  TicketTopic = "Consulta"
	TopicBug    TicketTopic = "Bug/Error"
	TopicAccess TicketTopic = "Accesos"
	TopicOther  TicketTopic = "Otro"
)

// Topics lists every valid topic.
func Topics() []TicketTopic {
	return []TicketTopic{TopicGitHub, TopicQuery, TopicBug, TopicAccess, TopicOther}
}

// ValidTopic reports whether t belongs to the closed topic set.
func ValidTopic(t TicketTopic) bool {
	for _, candidate := range Topics() {
		if candidate == t {
			return true
		}
	}
	return false
}

// TicketPriority enumerates urgency, ordered Urgent > High > Normal > Low.
type TicketPriority string

const (
	PriorityLow    TicketPriority = "Baja"
	PriorityNormal TicketPriority = "Normal"
	PriorityHigh   TicketPriority = "Alta"
	PriorityUrgent TicketPriority = "Urgente"
)

// Priorities lists every valid priority in ascending rank order.
func Priorities() []TicketPriority {
	return []TicketPriority{PriorityLow, PriorityNormal, PriorityHigh, PriorityUrgent}
}

// ValidPriority reports whether p belongs to the priority set.
func ValidPriority(p TicketPriority) bool {
	for _, candidate := range Priorities() {
		if candidate == p {
			return true
		}
	}
	return false
}

// Rank returns the sort weight of a priority (Urgent=3 ... Low=0).
func (p TicketPriority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 1
	default:
		return 0
	}
}

// Comment is a single message in a ticket's thread. Comments are append-only
// and never edited or deleted.
type Comment struct {
	ID         string `json:"id"`
	AuthorName string `json:"authorName"`
	IsAdmin    bool   `json:"isAdmin"`
	Text       string `json:"text"`
	CreatedAt  int64  `json:"createdAt"`
}

// Ticket is the aggregate for support requests. Timestamps are epoch
// milliseconds. Number is the human-facing sequential reference; Number==0
// marks a legacy record awaiting the repair pass, real numbers start at 1.
type Ticket struct {
	ID             string         `json:"id"`
	Number         int            `json:"number,omitempty"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	CreatorName    string         `json:"creatorName"`
	CreatorID      string         `json:"creatorId"`
	Topic          TicketTopic    `json:"topic"`
	Priority       TicketPriority `json:"priority,omitempty"`
	Status         TicketStatus   `json:"status"`
	CreatedAt      int64          `json:"createdAt"`
	ResolvedAt     int64          `json:"resolvedAt,omitempty"`
	ResolutionNote string         `json:"resolutionNote,omitempty"`
	AISolution     string         `json:"aiSolution,omitempty"`
	Comments       []Comment      `json:"comments"`
}

// Clone returns a deep copy so callers cannot mutate the canonical state.
func (t Ticket) Clone() Ticket {
	out := t
	if t.Comments != nil {
		out.Comments = make([]Comment, len(t.Comments))
		copy(out.Comments, t.Comments)
	}
	return out
}

// CloneTickets deep-copies a ticket slice.
func CloneTickets(tickets []Ticket) []Ticket {
	if tickets == nil {
		return nil
	}
	out := make([]Ticket, len(tickets))
	for i := range tickets {
		out[i] = tickets[i].Clone()
	}
	return out
}
