package models

// ErrorResponse is the standard error payload returned by all handlers.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MessageResponse is the standard success payload for operations that
// do not return an entity.
type MessageResponse struct {
	Message string `json:"message"`
}

// IDResponse is returned by create/update operations so the client can
// keep addressing the persisted entity.
type IDResponse struct {
	ID int `json:"id"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	IP       string `json:"ip"`
}

type LoginResponse struct {
	Message      string `json:"message"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	SessionID    string `json:"session_id"`
	User         struct {
		ID    int    `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}
