package stubapi

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lankahomes/storefront/internal/core/domain"
)

// Account is a marketplace user as the backend stores it.
type Account struct {
	ID           int64
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash string
	Role         domain.Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Accounts is an in-memory account table keyed by lowercased email.
type Accounts struct {
	mu     sync.RWMutex
	byMail map[string]*Account
	nextID int64
}

func NewAccounts() *Accounts {
	return &Accounts{byMail: make(map[string]*Account), nextID: 1}
}

func (r *Accounts) Create(_ context.Context, a *Account) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := strings.ToLower(a.Email)
	if _, exists := r.byMail[key]; exists {
		return nil, domain.ErrUserExists
	}
	stored := *a
	stored.ID = r.nextID
	stored.Email = key
	r.nextID++
	r.byMail[key] = &stored

	out := stored
	return &out, nil
}

func (r *Accounts) FindByEmail(_ context.Context, email string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.byMail[strings.ToLower(email)]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	out := *a
	return &out, nil
}

// Touch records a successful login.
func (r *Accounts) Touch(_ context.Context, email string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.byMail[strings.ToLower(email)]; ok {
		a.UpdatedAt = at
	}
}

// ToggleActive flips the active flag of the account with id.
func (r *Accounts) ToggleActive(_ context.Context, id int64) (*Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byMail {
		if a.ID == id {
			a.Active = !a.Active
			out := *a
			return &out, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// List returns all accounts ordered by id.
func (r *Accounts) List(_ context.Context) []Account {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Account, 0, len(r.byMail))
	for _, a := range r.byMail {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
