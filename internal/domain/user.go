package domain

// User is a known ticket creator. Deleting a user does not cascade to
// tickets; display falls back to the denormalized creator name.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Subject is a predefined label offered as a ticket title at creation.
// Deleting a subject does not affect existing tickets.
type Subject struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}
