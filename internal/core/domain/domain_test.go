package domain

import "testing"

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		price float64
		want  string
	}{
		{0, "Rs. 0"},
		{950, "Rs. 950"},
		{45000, "Rs. 45,000"},
		{99999, "Rs. 99,999"},
		{100000, "Rs. 1.0L"},
		{2_550_000, "Rs. 25.5L"},
		{10_000_000, "Rs. 1.0Cr"},
		{125_000_000, "Rs. 12.5Cr"},
	}
	for _, tc := range cases {
		if got := FormatPrice(tc.price); got != tc.want {
			t.Errorf("FormatPrice(%v) = %q, want %q", tc.price, got, tc.want)
		}
	}
}

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"ADMIN", RoleAdmin, true},
		{"ROLE_SELLER", RoleSeller, true},
		{" buyer ", RoleBuyer, true},
		{"agent", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseRole(%q) = (%q, %v), want (%q, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
	if RoleSeller.Wire() != "SELLER" {
		t.Errorf("Wire() = %q", RoleSeller.Wire())
	}
}

func TestUser_OverlayAndHasRole(t *testing.T) {
	u := User{Email: "a@b.com", Role: RoleSeller}.Overlay(User{Email: "other@b.com", FirstName: "Nimal", Role: RoleAdmin})
	if u.Email != "a@b.com" || u.FirstName != "Nimal" || u.Role != RoleSeller {
		t.Fatalf("unexpected overlay result: %+v", u)
	}
	if !u.HasRole() {
		t.Fatal("empty role set should match")
	}
	if u.HasRole(RoleAdmin) {
		t.Fatal("seller must not match admin")
	}
	if u.DisplayName() != "Nimal" {
		t.Fatalf("DisplayName = %q", u.DisplayName())
	}
}

func TestSession_Phase(t *testing.T) {
	s := NewSession()
	if s.Phase() != PhaseUninitialized || !s.Loading {
		t.Fatalf("new session should be uninitialized and loading, got %s", s.Phase())
	}
	s.Pending = OpBootstrap
	if s.Phase() != PhaseBootstrapping {
		t.Fatalf("got %s", s.Phase())
	}
	s = Session{Resolved: true}
	if s.Phase() != PhaseAnonymous {
		t.Fatalf("got %s", s.Phase())
	}
	s = Session{Resolved: true, IsAuthenticated: true, User: &User{Email: "a@b.com"}}
	if s.Phase() != PhaseAuthenticated {
		t.Fatalf("got %s", s.Phase())
	}
	s.Pending = OpLogin
	if s.Phase() != PhaseLoggingIn {
		t.Fatalf("got %s", s.Phase())
	}
}

func TestSession_CloneDetachesUser(t *testing.T) {
	s := Session{User: &User{Email: "a@b.com"}, IsAuthenticated: true}
	c := s.Clone()
	c.User.Email = "changed@b.com"
	if s.User.Email != "a@b.com" {
		t.Fatal("clone shares the user pointer")
	}
}

func TestPropertyStatus_CanTransitionTo(t *testing.T) {
	if !StatusPending.CanTransitionTo(StatusApproved) {
		t.Fatal("pending -> approved should be allowed")
	}
	if StatusSold.CanTransitionTo(StatusApproved) {
		t.Fatal("sold is terminal")
	}
}
