package ports

import "context"

// LoginRequest is the login form payload.
type LoginRequest struct {
	Email    string `json:"email"    form:"email"    validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// RegisterRequest is the registration form payload.
type RegisterRequest struct {
	FirstName string `json:"firstName"       form:"firstName" validate:"required"`
	LastName  string `json:"lastName"        form:"lastName"  validate:"required"`
	Email     string `json:"email"           form:"email"     validate:"required,email"`
	Password  string `json:"password"        form:"password"  validate:"required,min=6"`
	Phone     string `json:"phone,omitempty" form:"phone"`
	Role      string `json:"role,omitempty"  form:"role"      validate:"omitempty,oneof=BUYER SELLER buyer seller"`
}

// AuthResponse is the envelope the backend returns from the auth endpoints.
// Login responses usually include profile fields; register responses may not.
type AuthResponse struct {
	Success   bool   `json:"success"`
	Token     string `json:"token,omitempty"`
	Message   string `json:"message,omitempty"`
	Email     string `json:"email,omitempty"`
	Role      string `json:"role,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// AuthAPI is the remote authentication contract.
type AuthAPI interface {
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	// Validate checks the attached credential. A non-2xx answer is an error;
	// a 2xx body that explicitly says success=false is also an error.
	Validate(ctx context.Context) (*AuthResponse, error)
}
