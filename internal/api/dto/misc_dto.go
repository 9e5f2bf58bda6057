package dto

// AdminLoginRequest authenticates the administrator capability.
type AdminLoginRequest struct {
	Password string `json:"password"`
}

// SelectIdentityRequest binds the session to an existing user.
type SelectIdentityRequest struct {
	UserID string `json:"userId"`
}

// SessionResponse carries an issued token.
type SessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	Role      string `json:"role"`
	Name      string `json:"name"`
	UserID    string `json:"userId,omitempty"`
}

// CreateUserRequest adds a user.
type CreateUserRequest struct {
	Name string `json:"name"`
}

// CreateSubjectRequest adds a subject label.
type CreateSubjectRequest struct {
	Title string `json:"title"`
}

// SettingsResponse exposes the persisted UI settings.
type SettingsResponse struct {
	Theme     string `json:"theme"`
	AIEnabled bool   `json:"aiEnabled"`
}

// UpdateSettingsRequest patches settings; nil fields are left unchanged.
type UpdateSettingsRequest struct {
	Theme     *string `json:"theme"`
	AIEnabled *bool   `json:"aiEnabled"`
}

// SuggestionRequest carries free text for the advisory operations.
type SuggestionRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// SuggestionResponse carries the advisory answer.
type SuggestionResponse struct {
	Suggestion string `json:"suggestion"`
}
