package types

import "github.com/go-playground/validator/v10"

// Role is an operator role carried in access tokens.
type Role string

// Role constants
const (
	RoleRecruiter Role = "recruiter"
	RoleAdmin     Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleRecruiter || r == RoleAdmin
}

// TokenRequest describes an operator token to mint.
type TokenRequest struct {
	Subject string `json:"subject" validate:"required,min=1,max=200"`
	Role    Role   `json:"role" validate:"required,oneof=recruiter admin"`
}

// Validate validates the TokenRequest using the validator.
func (r *TokenRequest) Validate() error {
	return validator.New().Struct(r)
}
