package service

import (
	"math/rand"
	"testing"

	"github.com/lankahomes/storefront/internal/core/domain"
)

func TestReduce_Start(t *testing.T) {
	s := domain.Session{Resolved: true, Error: "old"}

	got := Reduce(s, StartAction{Op: domain.OpLogin})

	if !got.Loading {
		t.Error("start must set loading")
	}
	if got.Error != "" {
		t.Errorf("start must clear error, got %q", got.Error)
	}
	if got.Phase() != domain.PhaseLoggingIn {
		t.Errorf("expected phase %q, got %q", domain.PhaseLoggingIn, got.Phase())
	}
}

func TestReduce_SuccessThenFailure(t *testing.T) {
	s := Reduce(domain.NewSession(), SuccessAction{User: domain.User{Email: "a@b.com", Role: domain.RoleBuyer}})
	if !s.IsAuthenticated || s.User == nil || s.User.Email != "a@b.com" {
		t.Fatalf("unexpected session after success: %+v", s)
	}
	if s.Loading || !s.Resolved {
		t.Fatalf("success must resolve and stop loading: %+v", s)
	}

	s = Reduce(s, FailureAction{Message: "Bad credentials"})
	if s.IsAuthenticated || s.User != nil {
		t.Fatalf("failure must drop identity: %+v", s)
	}
	if s.Error != "Bad credentials" {
		t.Errorf("expected error message, got %q", s.Error)
	}
}

func TestReduce_ClearErrorOnlyTouchesError(t *testing.T) {
	u := domain.User{Email: "a@b.com"}
	s := domain.Session{User: &u, IsAuthenticated: true, Resolved: true, Error: "x"}

	got := Reduce(s, ClearErrorAction{})

	want := s.Clone()
	want.Error = ""
	if got.Error != "" || got.IsAuthenticated != want.IsAuthenticated || got.Resolved != want.Resolved || got.User.Email != "a@b.com" {
		t.Errorf("clear error changed more than the error: %+v", got)
	}
}

func TestReduce_SetLoadingFalseResolves(t *testing.T) {
	s := Reduce(domain.NewSession(), StartAction{Op: domain.OpBootstrap})
	s = Reduce(s, SetLoadingAction{Loading: false})

	if s.Loading || !s.Resolved || s.Pending != domain.OpNone {
		t.Errorf("expected resolved idle session, got %+v", s)
	}
	if s.Phase() != domain.PhaseAnonymous {
		t.Errorf("expected anonymous, got %q", s.Phase())
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	u := domain.User{Email: "a@b.com"}
	s := domain.Session{User: &u, IsAuthenticated: true, Resolved: true}

	_ = Reduce(s, LogoutAction{})

	if !s.IsAuthenticated || s.User == nil {
		t.Fatal("reduce mutated its input")
	}
}

// Random action sequences never produce an authenticated session without a user.
func TestReduce_NeverAuthenticatedWithoutUser(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	actions := []func() Action{
		func() Action { return StartAction{Op: domain.OpLogin} },
		func() Action { return StartAction{Op: domain.OpBootstrap} },
		func() Action { return SuccessAction{User: domain.User{Email: "x@y.z"}} },
		func() Action { return FailureAction{Message: "nope"} },
		func() Action { return LogoutAction{} },
		func() Action { return ClearErrorAction{} },
		func() Action { return SetLoadingAction{Loading: rng.Intn(2) == 0} },
	}

	for run := 0; run < 200; run++ {
		s := domain.NewSession()
		for step := 0; step < 30; step++ {
			s = Reduce(s, actions[rng.Intn(len(actions))]())
			assertInvariant(t, s)
		}
	}
}

func TestLogout_IdempotentOnAnonymous(t *testing.T) {
	anon := Reduce(domain.NewSession(), SetLoadingAction{Loading: false})
	anon.Error = "stale"

	got := Reduce(anon, LogoutAction{})

	want := anon
	want.Error = ""
	if got != want {
		t.Errorf("logout on anonymous changed more than the error:\n got %+v\nwant %+v", got, want)
	}
}
