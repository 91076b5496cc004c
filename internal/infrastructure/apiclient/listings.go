package apiclient

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/lankahomes/storefront/internal/core/domain"
)

func pageQuery(page, size int) url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	return q
}

func idPath(prefix string, id int64, suffix string) string {
	return prefix + "/" + strconv.FormatInt(id, 10) + suffix
}

// ListProperties returns approved listings, newest first.
func (c *Client) ListProperties(ctx context.Context, page, size int) (*domain.Page[domain.Property], error) {
	var p domain.Page[domain.Property]
	if err := c.get(ctx, "/properties", pageQuery(page, size), &p); err != nil {
		return nil, fmt.Errorf("apiclient.ListProperties: %w", err)
	}
	return &p, nil
}

func (c *Client) GetProperty(ctx context.Context, id int64) (*domain.Property, error) {
	var p domain.Property
	if err := c.get(ctx, idPath("/properties", id, ""), nil, &p); err != nil {
		return nil, fmt.Errorf("apiclient.GetProperty: %w", err)
	}
	return &p, nil
}

func (c *Client) SearchProperties(ctx context.Context, keyword string, page, size int) (*domain.Page[domain.Property], error) {
	q := pageQuery(page, size)
	q.Set("keyword", keyword)

	var p domain.Page[domain.Property]
	if err := c.get(ctx, "/properties/search", q, &p); err != nil {
		return nil, fmt.Errorf("apiclient.SearchProperties: %w", err)
	}
	return &p, nil
}

// FilterProperties sends only the filter fields that are set.
func (c *Client) FilterProperties(ctx context.Context, f domain.PropertyFilter, page, size int) (*domain.Page[domain.Property], error) {
	q := pageQuery(page, size)
	setIf := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	setIf("keyword", f.Keyword)
	setIf("propertyType", f.PropertyType)
	setIf("listingType", f.ListingType)
	setIf("district", f.District)
	setIf("city", f.City)
	if f.MinPrice > 0 {
		q.Set("minPrice", strconv.FormatFloat(f.MinPrice, 'f', -1, 64))
	}
	if f.MaxPrice > 0 {
		q.Set("maxPrice", strconv.FormatFloat(f.MaxPrice, 'f', -1, 64))
	}
	if f.MinBedrooms > 0 {
		q.Set("minBedrooms", strconv.Itoa(f.MinBedrooms))
	}

	var p domain.Page[domain.Property]
	if err := c.get(ctx, "/properties/filter", q, &p); err != nil {
		return nil, fmt.Errorf("apiclient.FilterProperties: %w", err)
	}
	return &p, nil
}

func (c *Client) FeaturedProperties(ctx context.Context) ([]domain.Property, error) {
	var out []domain.Property
	if err := c.get(ctx, "/properties/featured", nil, &out); err != nil {
		return nil, fmt.Errorf("apiclient.FeaturedProperties: %w", err)
	}
	return out, nil
}

// MyProperties returns the caller's own listings in every status.
func (c *Client) MyProperties(ctx context.Context, page, size int) (*domain.Page[domain.Property], error) {
	var p domain.Page[domain.Property]
	if err := c.get(ctx, "/properties/my-properties", pageQuery(page, size), &p); err != nil {
		return nil, fmt.Errorf("apiclient.MyProperties: %w", err)
	}
	return &p, nil
}

func (c *Client) DeleteProperty(ctx context.Context, id int64) error {
	if err := c.delete(ctx, idPath("/properties", id, "")); err != nil {
		return fmt.Errorf("apiclient.DeleteProperty: %w", err)
	}
	return nil
}

// --- Favorites ---

func (c *Client) Favorites(ctx context.Context) ([]domain.Property, error) {
	var out []domain.Property
	if err := c.get(ctx, "/favorites", nil, &out); err != nil {
		return nil, fmt.Errorf("apiclient.Favorites: %w", err)
	}
	return out, nil
}

func (c *Client) AddFavorite(ctx context.Context, propertyID int64) error {
	if err := c.post(ctx, idPath("/favorites", propertyID, ""), nil, nil); err != nil {
		return fmt.Errorf("apiclient.AddFavorite: %w", err)
	}
	return nil
}

func (c *Client) RemoveFavorite(ctx context.Context, propertyID int64) error {
	if err := c.delete(ctx, idPath("/favorites", propertyID, "")); err != nil {
		return fmt.Errorf("apiclient.RemoveFavorite: %w", err)
	}
	return nil
}

func (c *Client) IsFavorite(ctx context.Context, propertyID int64) (bool, error) {
	var out struct {
		IsFavorite bool `json:"isFavorite"`
	}
	if err := c.get(ctx, idPath("/favorites", propertyID, "/check"), nil, &out); err != nil {
		return false, fmt.Errorf("apiclient.IsFavorite: %w", err)
	}
	return out.IsFavorite, nil
}

// --- Admin ---

func (c *Client) AdminProperties(ctx context.Context, page, size int) (*domain.Page[domain.Property], error) {
	var p domain.Page[domain.Property]
	if err := c.get(ctx, "/admin/properties", pageQuery(page, size), &p); err != nil {
		return nil, fmt.Errorf("apiclient.AdminProperties: %w", err)
	}
	return &p, nil
}

func (c *Client) ApproveProperty(ctx context.Context, id int64) error {
	if err := c.put(ctx, idPath("/admin/properties", id, "/approve")); err != nil {
		return fmt.Errorf("apiclient.ApproveProperty: %w", err)
	}
	return nil
}

func (c *Client) RejectProperty(ctx context.Context, id int64) error {
	if err := c.put(ctx, idPath("/admin/properties", id, "/reject")); err != nil {
		return fmt.Errorf("apiclient.RejectProperty: %w", err)
	}
	return nil
}

func (c *Client) AdminUsers(ctx context.Context) ([]domain.AdminUser, error) {
	var out []domain.AdminUser
	if err := c.get(ctx, "/admin/users", nil, &out); err != nil {
		return nil, fmt.Errorf("apiclient.AdminUsers: %w", err)
	}
	return out, nil
}

func (c *Client) ToggleUserStatus(ctx context.Context, id int64) error {
	if err := c.put(ctx, idPath("/admin/users", id, "/toggle-status")); err != nil {
		return fmt.Errorf("apiclient.ToggleUserStatus: %w", err)
	}
	return nil
}
