package stubapi

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/lankahomes/storefront/internal/core/domain"
)

// Catalog is the in-memory listing table plus per-user favorites.
type Catalog struct {
	mu        sync.RWMutex
	props     map[int64]*domain.Property
	favorites map[string]map[int64]struct{}
	nextID    int64
}

func NewCatalog() *Catalog {
	return &Catalog{
		props:     make(map[int64]*domain.Property),
		favorites: make(map[string]map[int64]struct{}),
		nextID:    1,
	}
}

// Add stores p under a fresh id and returns the stored copy.
func (c *Catalog) Add(_ context.Context, p domain.Property) domain.Property {
	c.mu.Lock()
	defer c.mu.Unlock()
	p.ID = c.nextID
	c.nextID++
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if p.Status == "" {
		p.Status = domain.StatusPending
	}
	stored := p
	c.props[p.ID] = &stored
	return stored
}

func (c *Catalog) Get(_ context.Context, id int64) (domain.Property, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.props[id]
	if !ok {
		return domain.Property{}, domain.ErrPropertyNotFound
	}
	return *p, nil
}

// Query returns the listings matching keep, newest first.
func (c *Catalog) Query(_ context.Context, keep func(domain.Property) bool) []domain.Property {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Property, 0, len(c.props))
	for _, p := range c.props {
		if keep == nil || keep(*p) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// SetStatus moves a listing through the moderation workflow.
func (c *Catalog) SetStatus(_ context.Context, id int64, next domain.PropertyStatus) (domain.Property, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.props[id]
	if !ok {
		return domain.Property{}, domain.ErrPropertyNotFound
	}
	if !p.Status.CanTransitionTo(next) {
		return domain.Property{}, domain.ErrInvalidTransition
	}
	p.Status = next
	return *p, nil
}

// Delete removes a listing. owner is enforced unless admin is set.
func (c *Catalog) Delete(_ context.Context, id int64, owner string, admin bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.props[id]
	if !ok {
		return domain.ErrPropertyNotFound
	}
	if !admin && !strings.EqualFold(p.OwnerEmail, owner) {
		return domain.ErrForbidden
	}
	delete(c.props, id)
	for _, favs := range c.favorites {
		delete(favs, id)
	}
	return nil
}

func (c *Catalog) AddFavorite(_ context.Context, email string, id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.props[id]; !ok {
		return domain.ErrPropertyNotFound
	}
	favs, ok := c.favorites[email]
	if !ok {
		favs = make(map[int64]struct{})
		c.favorites[email] = favs
	}
	favs[id] = struct{}{}
	return nil
}

func (c *Catalog) RemoveFavorite(_ context.Context, email string, id int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.favorites[email], id)
}

func (c *Catalog) IsFavorite(_ context.Context, email string, id int64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.favorites[email][id]
	return ok
}

func (c *Catalog) Favorites(ctx context.Context, email string) []domain.Property {
	c.mu.RLock()
	favs := make(map[int64]struct{}, len(c.favorites[email]))
	for id := range c.favorites[email] {
		favs[id] = struct{}{}
	}
	c.mu.RUnlock()

	return c.Query(ctx, func(p domain.Property) bool {
		_, ok := favs[p.ID]
		return ok
	})
}

// matches applies the filter form fields to p.
func matches(p domain.Property, f domain.PropertyFilter) bool {
	if f.Keyword != "" {
		kw := strings.ToLower(f.Keyword)
		if !strings.Contains(strings.ToLower(p.Title), kw) &&
			!strings.Contains(strings.ToLower(p.Description), kw) &&
			!strings.Contains(strings.ToLower(p.City), kw) {
			return false
		}
	}
	if f.PropertyType != "" && !strings.EqualFold(p.PropertyType, f.PropertyType) {
		return false
	}
	if f.ListingType != "" && !strings.EqualFold(p.ListingType, f.ListingType) {
		return false
	}
	if f.District != "" && !strings.EqualFold(p.District, f.District) {
		return false
	}
	if f.City != "" && !strings.EqualFold(p.City, f.City) {
		return false
	}
	if f.MinPrice > 0 && p.Price < f.MinPrice {
		return false
	}
	if f.MaxPrice > 0 && p.Price > f.MaxPrice {
		return false
	}
	if f.MinBedrooms > 0 && p.Bedrooms < f.MinBedrooms {
		return false
	}
	return true
}

// paginate slices items into a zero-based page.
func paginate[T any](items []T, page, size int) domain.Page[T] {
	if size <= 0 {
		size = 12
	}
	if page < 0 {
		page = 0
	}
	total := len(items)
	pages := (total + size - 1) / size

	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	content := make([]T, end-start)
	copy(content, items[start:end])

	return domain.Page[T]{
		Content:       content,
		TotalElements: int64(total),
		TotalPages:    pages,
		Number:        page,
		Size:          size,
	}
}

// seedListings loads a few approved listings so the views have content.
func seedListings(ctx context.Context, c *Catalog, owner string) {
	base := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)
	seeds := []domain.Property{
		{Title: "Colonial villa in Kandy", PropertyType: "VILLA", ListingType: "SALE", Price: 85_000_000, District: "Kandy", City: "Kandy", Bedrooms: 5, Bathrooms: 4, AreaSqft: 4200, Featured: true},
		{Title: "Sea view apartment, Colombo 3", PropertyType: "APARTMENT", ListingType: "SALE", Price: 42_500_000, District: "Colombo", City: "Colombo", Bedrooms: 3, Bathrooms: 2, AreaSqft: 1650, Featured: true},
		{Title: "Annex for rent near Nugegoda", PropertyType: "HOUSE", ListingType: "RENT", Price: 45_000, District: "Colombo", City: "Nugegoda", Bedrooms: 1, Bathrooms: 1, AreaSqft: 500},
		{Title: "Tea estate land, Nuwara Eliya", PropertyType: "LAND", ListingType: "SALE", Price: 2_550_000, District: "Nuwara Eliya", City: "Nuwara Eliya"},
	}
	for i, p := range seeds {
		p.Status = domain.StatusApproved
		p.OwnerEmail = owner
		p.CreatedAt = base.Add(time.Duration(i) * 24 * time.Hour)
		c.Add(ctx, p)
	}
}
