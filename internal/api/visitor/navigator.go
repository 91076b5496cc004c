package visitor

import (
	"sync"

	"github.com/lankahomes/storefront/internal/core/ports"
)

// Navigator is the per-visitor navigation capability. It remembers the
// path of the request in progress and holds at most one pending redirect.
type Navigator struct {
	mu      sync.Mutex
	current string
	pending string
}

var _ ports.Navigator = (*Navigator)(nil)

func NewNavigator() *Navigator {
	return &Navigator{current: "/"}
}

// Navigate records a redirect for the visitor's next response.
func (n *Navigator) Navigate(path string) {
	n.mu.Lock()
	n.pending = path
	n.mu.Unlock()
}

func (n *Navigator) CurrentPath() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Visit sets the path of the request being served.
func (n *Navigator) Visit(path string) {
	n.mu.Lock()
	n.current = path
	n.mu.Unlock()
}

// TakeRedirect returns and clears the pending redirect.
func (n *Navigator) TakeRedirect() (string, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	to := n.pending
	n.pending = ""
	return to, to != ""
}
