package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// PropertyStatus represents the moderation/lifecycle state of a listing.
type PropertyStatus string

const (
	StatusPending  PropertyStatus = "PENDING"
	StatusApproved PropertyStatus = "APPROVED"
	StatusRejected PropertyStatus = "REJECTED"
	StatusSold     PropertyStatus = "SOLD"
	StatusRented   PropertyStatus = "RENTED"
)

// validTransitions defines which moderation moves the UI offers.
var validTransitions = map[PropertyStatus][]PropertyStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusRejected: {StatusApproved},
	StatusApproved: {StatusSold, StatusRented, StatusRejected},
}

var ErrInvalidTransition = errors.New("invalid status transition")

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s PropertyStatus) CanTransitionTo(next PropertyStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Listing type and property type vocabularies used by the filter form.
var (
	PropertyTypes = []string{"HOUSE", "APARTMENT", "LAND", "COMMERCIAL", "VILLA", "CONDO"}
	ListingTypes  = []string{"SALE", "RENT"}
)

// Property is the listing read model returned by the backend.
type Property struct {
	ID           int64          `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	Price        float64        `json:"price"`
	PropertyType string         `json:"propertyType"`
	ListingType  string         `json:"listingType"`
	Status       PropertyStatus `json:"status"`
	District     string         `json:"district,omitempty"`
	City         string         `json:"city,omitempty"`
	Address      string         `json:"address,omitempty"`
	Bedrooms     int            `json:"bedrooms,omitempty"`
	Bathrooms    int            `json:"bathrooms,omitempty"`
	AreaSqft     int            `json:"areaSqft,omitempty"`
	Featured     bool           `json:"featured"`
	OwnerEmail   string         `json:"ownerEmail,omitempty"`
	ImageURLs    []string       `json:"imageUrls,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}

// PropertyFilter carries the optional filter form fields. Zero values are omitted.
type PropertyFilter struct {
	Keyword      string
	PropertyType string
	ListingType  string
	District     string
	City         string
	MinPrice     float64
	MaxPrice     float64
	MinBedrooms  int
}

// IsZero reports whether no filter field is set.
func (f PropertyFilter) IsZero() bool {
	return f == PropertyFilter{}
}

// Page is the paginated envelope the backend wraps list responses in.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	Number        int   `json:"number"`
	Size          int   `json:"size"`
}

// AdminUser is the row shape of the admin user listing.
type AdminUser struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
	Active    bool   `json:"active"`
}

// PriceRange is one preset in the price filter.
type PriceRange struct {
	Label string
	Min   float64
	Max   float64 // 0 = unbounded
}

var PriceRanges = []PriceRange{
	{Label: "Under 5M", Min: 0, Max: 5_000_000},
	{Label: "5M - 10M", Min: 5_000_000, Max: 10_000_000},
	{Label: "10M - 20M", Min: 10_000_000, Max: 20_000_000},
	{Label: "20M - 50M", Min: 20_000_000, Max: 50_000_000},
	{Label: "Above 50M", Min: 50_000_000},
}

const (
	crore = 10_000_000
	lakh  = 100_000
)

// FormatPrice renders an LKR amount the way listings display it:
// crores and lakhs with one decimal, smaller amounts with separators.
func FormatPrice(price float64) string {
	switch {
	case price >= crore:
		return fmt.Sprintf("Rs. %.1fCr", price/crore)
	case price >= lakh:
		return fmt.Sprintf("Rs. %.1fL", price/lakh)
	default:
		return "Rs. " + groupThousands(int64(math.Round(price)))
	}
}

func groupThousands(n int64) string {
	sign := ""
	if n < 0 {
		sign = "-"
		n = -n
	}
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return sign + s
	}
	var b strings.Builder
	head := len(s) % 3
	if head > 0 {
		b.WriteString(s[:head])
	}
	for i := head; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return sign + b.String()
}
