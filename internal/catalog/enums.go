// Package catalog holds the closed product-category and marketplace enumerations
// shared with the partner/product schema.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownCategory is returned when a category is outside the supported set.
	ErrUnknownCategory = errors.New("unknown category")
	// ErrUnknownMarketplace is returned when a marketplace is outside the supported set.
	ErrUnknownMarketplace = errors.New("unknown marketplace")
)

// Category identifies a product category.
type Category string

const (
	CategoryElectronics Category = "electronics"
	CategoryClothing    Category = "clothing"
	CategoryHome        Category = "home"
	CategoryBeauty      Category = "beauty"
	CategoryKids        Category = "kids"
	CategorySports      Category = "sports"
	CategoryFood        Category = "food"
	CategoryAuto        Category = "auto"
	CategoryBooks       Category = "books"
	CategoryOther       Category = "other"
)

// Categories lists every supported category in display order.
func Categories() []Category {
	return []Category{
		CategoryElectronics,
		CategoryClothing,
		CategoryHome,
		CategoryBeauty,
		CategoryKids,
		CategorySports,
		CategoryFood,
		CategoryAuto,
		CategoryBooks,
		CategoryOther,
	}
}

// Valid reports whether c is a member of the closed set.
func (c Category) Valid() bool {
	switch c {
	case CategoryElectronics, CategoryClothing, CategoryHome, CategoryBeauty, CategoryKids,
		CategorySports, CategoryFood, CategoryAuto, CategoryBooks, CategoryOther:
		return true
	}
	return false
}

// ParseCategory normalises raw input into a Category.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, raw)
	}
	return c, nil
}

// Marketplace identifies the sales channel a partner lists on.
type Marketplace string

const (
	MarketplaceUzum        Marketplace = "uzum"
	MarketplaceYandex      Marketplace = "yandex"
	MarketplaceWildberries Marketplace = "wildberries"
	MarketplaceOzon        Marketplace = "ozon"
)

// Marketplaces lists every supported marketplace.
func Marketplaces() []Marketplace {
	return []Marketplace{MarketplaceUzum, MarketplaceYandex, MarketplaceWildberries, MarketplaceOzon}
}

// Valid reports whether m is a member of the closed set.
func (m Marketplace) Valid() bool {
	switch m {
	case MarketplaceUzum, MarketplaceYandex, MarketplaceWildberries, MarketplaceOzon:
		return true
	}
	return false
}

// ParseMarketplace normalises raw input into a Marketplace.
func ParseMarketplace(raw string) (Marketplace, error) {
	m := Marketplace(strings.ToLower(strings.TrimSpace(raw)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMarketplace, raw)
	}
	return m, nil
}
