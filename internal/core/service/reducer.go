package service

import "github.com/lankahomes/storefront/internal/core/domain"

// Action is one of the session transitions below. The set is closed.
type Action interface {
	action()
}

// StartAction marks an authentication call as in flight.
type StartAction struct {
	Op domain.Operation
}

// SuccessAction establishes an authenticated identity.
type SuccessAction struct {
	User domain.User
}

// FailureAction resolves the pending call as anonymous with a message.
type FailureAction struct {
	Message string
}

// LogoutAction resets to the anonymous shape.
type LogoutAction struct{}

// ClearErrorAction clears the last failure message and nothing else.
type ClearErrorAction struct{}

// SetLoadingAction toggles the loading flag. Setting it to false also
// terminates whatever was pending.
type SetLoadingAction struct {
	Loading bool
}

func (StartAction) action()      {}
func (SuccessAction) action()    {}
func (FailureAction) action()    {}
func (LogoutAction) action()     {}
func (ClearErrorAction) action() {}
func (SetLoadingAction) action() {}

// Reduce returns the session that results from applying a to s. It is pure:
// s is not modified and the result shares no pointers with it.
func Reduce(s domain.Session, a Action) domain.Session {
	next := s.Clone()

	switch a := a.(type) {
	case StartAction:
		next.Loading = true
		next.Error = ""
		next.Pending = a.Op

	case SuccessAction:
		u := a.User
		next.User = &u
		next.IsAuthenticated = true
		next.Loading = false
		next.Error = ""
		next.Pending = domain.OpNone
		next.Resolved = true

	case FailureAction:
		next.User = nil
		next.IsAuthenticated = false
		next.Loading = false
		next.Error = a.Message
		next.Pending = domain.OpNone
		next.Resolved = true

	case LogoutAction:
		next.User = nil
		next.IsAuthenticated = false
		next.Loading = false
		next.Error = ""
		next.Pending = domain.OpNone
		next.Resolved = true

	case ClearErrorAction:
		next.Error = ""

	case SetLoadingAction:
		next.Loading = a.Loading
		if !a.Loading {
			next.Pending = domain.OpNone
			next.Resolved = true
		}
	}

	return next
}

// actionName is used as a metrics label.
func actionName(a Action) string {
	switch a.(type) {
	case StartAction:
		return "start"
	case SuccessAction:
		return "success"
	case FailureAction:
		return "failure"
	case LogoutAction:
		return "logout"
	case ClearErrorAction:
		return "clear_error"
	case SetLoadingAction:
		return "set_loading"
	}
	return "unknown"
}
