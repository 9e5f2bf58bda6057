package domain

// Snapshot is the complete application state: the unit of persistence and of
// import/export. Import always replaces the whole snapshot, never merges.
type Snapshot struct {
	Tickets  []Ticket  `json:"tickets"`
	Users    []User    `json:"users"`
	Subjects []Subject `json:"subjects"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Tickets:  CloneTickets(s.Tickets),
		Users:    make([]User, len(s.Users)),
		Subjects: make([]Subject, len(s.Subjects)),
	}
	copy(out.Users, s.Users)
	copy(out.Subjects, s.Subjects)
	return out
}

// FindUser returns the user with the given id, if present.
func (s Snapshot) FindUser(id string) (User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}
