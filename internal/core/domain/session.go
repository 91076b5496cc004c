package domain

// Operation names the authentication call a session is waiting on.
type Operation string

const (
	OpNone      Operation = ""
	OpBootstrap Operation = "bootstrap"
	OpLogin     Operation = "login"
	OpRegister  Operation = "register"
)

// Phase is the derived lifecycle position of a Session.
type Phase string

const (
	PhaseUninitialized Phase = "uninitialized"
	PhaseBootstrapping Phase = "bootstrapping"
	PhaseAnonymous     Phase = "anonymous"
	PhaseAuthenticated Phase = "authenticated"
	PhaseLoggingIn     Phase = "logging_in"
	PhaseRegistering   Phase = "registering"
)

// Session is the client's belief about the current identity.
//
// IsAuthenticated implies User != nil. Resolved flips to true once the
// startup bootstrap has terminated and never flips back.
type Session struct {
	User            *User     `json:"user"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	Loading         bool      `json:"loading"`
	Error           string    `json:"error,omitempty"`
	Resolved        bool      `json:"resolved"`
	Pending         Operation `json:"pending,omitempty"`
}

// NewSession returns the uninitialized state every session starts in.
func NewSession() Session {
	return Session{Loading: true}
}

// Phase derives the lifecycle position from the stored fields.
func (s Session) Phase() Phase {
	switch s.Pending {
	case OpBootstrap:
		return PhaseBootstrapping
	case OpLogin:
		return PhaseLoggingIn
	case OpRegister:
		return PhaseRegistering
	}
	if !s.Resolved {
		return PhaseUninitialized
	}
	if s.IsAuthenticated {
		return PhaseAuthenticated
	}
	return PhaseAnonymous
}

// Clone returns a copy that shares no pointers with s.
func (s Session) Clone() Session {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}
