package handler

import "github.com/lankahomes/storefront/internal/core/domain"

// propertyView is a listing as the storefront renders it.
type propertyView struct {
	domain.Property
	PriceLabel string `json:"priceLabel"`
}

type pageView struct {
	Content       []propertyView `json:"content"`
	TotalElements int64          `json:"totalElements"`
	TotalPages    int            `json:"totalPages"`
	Number        int            `json:"number"`
	Size          int            `json:"size"`
}

func toPropertyView(p domain.Property) propertyView {
	return propertyView{Property: p, PriceLabel: domain.FormatPrice(p.Price)}
}

func toPropertyViews(ps []domain.Property) []propertyView {
	out := make([]propertyView, 0, len(ps))
	for _, p := range ps {
		out = append(out, toPropertyView(p))
	}
	return out
}

func toPageView(p *domain.Page[domain.Property]) pageView {
	if p == nil {
		return pageView{Content: []propertyView{}}
	}
	return pageView{
		Content:       toPropertyViews(p.Content),
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
		Number:        p.Number,
		Size:          p.Size,
	}
}
