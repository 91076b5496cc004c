package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/lankahomes/storefront/internal/core/domain"
)

// ListingHandler serves marketplace listings through the visitor's API
// client, so every call carries that visitor's credential.
type ListingHandler struct{}

func NewListingHandler() *ListingHandler {
	return &ListingHandler{}
}

type listQuery struct {
	Page         int     `query:"page"         json:"page"         validate:"gte=0"`
	Size         int     `query:"size"         json:"size"         validate:"gte=0,max=100"`
	Keyword      string  `query:"keyword"      json:"keyword"`
	PropertyType string  `query:"propertyType" json:"propertyType" validate:"omitempty,oneof=HOUSE APARTMENT LAND COMMERCIAL VILLA CONDO"`
	ListingType  string  `query:"listingType"  json:"listingType"  validate:"omitempty,oneof=SALE RENT"`
	District     string  `query:"district"     json:"district"`
	City         string  `query:"city"         json:"city"`
	MinPrice     float64 `query:"minPrice"     json:"minPrice"     validate:"gte=0"`
	MaxPrice     float64 `query:"maxPrice"     json:"maxPrice"     validate:"gte=0"`
	MinBedrooms  int     `query:"minBedrooms"  json:"minBedrooms"  validate:"gte=0"`
}

func (q listQuery) filter() domain.PropertyFilter {
	return domain.PropertyFilter{
		Keyword:      q.Keyword,
		PropertyType: q.PropertyType,
		ListingType:  q.ListingType,
		District:     q.District,
		City:         q.City,
		MinPrice:     q.MinPrice,
		MaxPrice:     q.MaxPrice,
		MinBedrooms:  q.MinBedrooms,
	}
}

// List returns approved listings. A keyword alone searches; any other
// filter field switches to the filter endpoint.
//
// @Summary      List properties
// @Tags         properties
// @Produce      json
// @Param        page          query     int     false  "Zero-based page"
// @Param        size          query     int     false  "Page size"
// @Param        keyword       query     string  false  "Free text"
// @Param        propertyType  query     string  false  "HOUSE, APARTMENT, LAND, COMMERCIAL, VILLA, CONDO"
// @Param        listingType   query     string  false  "SALE or RENT"
// @Success      200           {object}  pageView
// @Failure      400           {object}  map[string]string
// @Failure      502           {object}  map[string]string
// @Router       /properties [get]
func (h *ListingHandler) List(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	var q listQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}

	ctx := c.Request().Context()
	f := q.filter()
	var page *domain.Page[domain.Property]
	switch {
	case f.IsZero():
		page, err = v.Listings.ListProperties(ctx, q.Page, q.Size)
	case f == domain.PropertyFilter{Keyword: f.Keyword}:
		page, err = v.Listings.SearchProperties(ctx, f.Keyword, q.Page, q.Size)
	default:
		page, err = v.Listings.FilterProperties(ctx, f, q.Page, q.Size)
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageView(page))
}

func (h *ListingHandler) Featured(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	props, err := v.Listings.FeaturedProperties(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPropertyViews(props))
}

// Get returns one listing.
//
// @Summary      Get property
// @Tags         properties
// @Produce      json
// @Param        id   path      int  true  "Property ID"
// @Success      200  {object}  propertyView
// @Failure      404  {object}  map[string]string
// @Router       /properties/{id} [get]
func (h *ListingHandler) Get(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	p, err := v.Listings.GetProperty(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPropertyView(*p))
}

// --- Favorites ---

func (h *ListingHandler) Favorites(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	props, err := v.Listings.Favorites(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPropertyViews(props))
}

func (h *ListingHandler) AddFavorite(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := v.Listings.AddFavorite(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ListingHandler) RemoveFavorite(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := v.Listings.RemoveFavorite(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ListingHandler) IsFavorite(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	fav, err := v.Listings.IsFavorite(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]bool{"isFavorite": fav})
}

// --- Seller ---

func (h *ListingHandler) MyProperties(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	var q listQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	page, err := v.Listings.MyProperties(c.Request().Context(), q.Page, q.Size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageView(page))
}

func (h *ListingHandler) DeleteMine(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := v.Listings.DeleteProperty(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// --- Admin ---

func (h *ListingHandler) AdminProperties(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	var q listQuery
	if err := bindAndValidate(c, &q); err != nil {
		return err
	}
	page, err := v.Listings.AdminProperties(c.Request().Context(), q.Page, q.Size)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toPageView(page))
}

func (h *ListingHandler) Approve(c echo.Context) error {
	return h.moderate(c, true)
}

func (h *ListingHandler) Reject(c echo.Context) error {
	return h.moderate(c, false)
}

func (h *ListingHandler) moderate(c echo.Context, approve bool) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if approve {
		err = v.Listings.ApproveProperty(ctx, id)
	} else {
		err = v.Listings.RejectProperty(ctx, id)
	}
	if err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *ListingHandler) AdminUsers(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	users, err := v.Listings.AdminUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (h *ListingHandler) ToggleUser(c echo.Context) error {
	v, err := ctxVisitor(c)
	if err != nil {
		return err
	}
	id, err := idParam(c)
	if err != nil {
		return err
	}
	if err := v.Listings.ToggleUserStatus(c.Request().Context(), id); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
