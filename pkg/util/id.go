package util

import "github.com/google/uuid"

// NewID generates an opaque unique identifier. Centralizes the ID strategy
// for tickets, comments, users and subjects.
func NewID() string {
	return uuid.NewString()
}
