package ports

import (
	"context"

	"github.com/lankahomes/storefront/internal/core/domain"
)

// ListingAPI covers the marketplace endpoints the guarded views call.
// Paging is zero-based, matching the backend.
type ListingAPI interface {
	ListProperties(ctx context.Context, page, size int) (*domain.Page[domain.Property], error)
	GetProperty(ctx context.Context, id int64) (*domain.Property, error)
	SearchProperties(ctx context.Context, keyword string, page, size int) (*domain.Page[domain.Property], error)
	FilterProperties(ctx context.Context, filter domain.PropertyFilter, page, size int) (*domain.Page[domain.Property], error)
	FeaturedProperties(ctx context.Context) ([]domain.Property, error)
	MyProperties(ctx context.Context, page, size int) (*domain.Page[domain.Property], error)
	DeleteProperty(ctx context.Context, id int64) error

	Favorites(ctx context.Context) ([]domain.Property, error)
	AddFavorite(ctx context.Context, propertyID int64) error
	RemoveFavorite(ctx context.Context, propertyID int64) error
	IsFavorite(ctx context.Context, propertyID int64) (bool, error)

	AdminProperties(ctx context.Context, page, size int) (*domain.Page[domain.Property], error)
	ApproveProperty(ctx context.Context, id int64) error
	RejectProperty(ctx context.Context, id int64) error
	AdminUsers(ctx context.Context) ([]domain.AdminUser, error)
	ToggleUserStatus(ctx context.Context, id int64) error
}
