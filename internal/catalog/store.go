// Package catalog holds the restaurant menu in memory.
package catalog

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"restaurant-chatbot/internal/domain"
	"restaurant-chatbot/internal/source"
)

// Source column names.
const (
	ColCategory        = "Category"
	ColItem            = "Item"
	ColServingSize     = "Serving Size"
	ColPrice           = "Price"
	ColCalories        = "Calories"
	ColTotalFat        = "Total Fat"
	ColTotalFatDV      = "Total Fat (% Daily Value)"
	ColSodium          = "Sodium"
	ColSodiumDV        = "Sodium (% Daily Value)"
	ColCarbohydrates   = "Carbohydrates"
	ColCarbohydratesDV = "Carbohydrates (% Daily Value)"
	ColProtein         = "Protein"
)

var requiredColumns = []string{ColCategory, ColItem, ColServingSize, ColPrice}

// Category is a named group of menu items in source order.
type Category struct {
	Name  string
	Items []domain.MenuItem
}

// Store is the in-memory catalog. Categories keep the order in which they
// first appear in the source; items keep source order within a category.
type Store struct {
	mu         sync.RWMutex
	categories []Category
	index      map[string]int
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{index: map[string]int{}}
}

// Load replaces the store contents with the items read from src and returns
// how many items were loaded.
//
// When src cannot be opened the store is left empty and the error wraps
// source.ErrUnavailable. Records missing a required value are skipped and
// reported as *source.MalformedRecordError; every valid record is kept.
func (s *Store) Load(ctx context.Context, src source.Source) (int, error) {
	var (
		categories []Category
		index      = map[string]int{}
		count      int
	)
	err := source.Read(ctx, src, requiredColumns, func(line int, rec source.Record) error {
		item, err := parseItem(src.Name(), line, rec)
		if err != nil {
			return err
		}
		i, ok := index[item.Category]
		if !ok {
			i = len(categories)
			index[item.Category] = i
			categories = append(categories, Category{Name: item.Category})
		}
		categories[i].Items = append(categories[i].Items, item)
		count++
		return nil
	})

	s.mu.Lock()
	s.categories = categories
	s.index = index
	s.mu.Unlock()
	return count, err
}

func parseItem(src string, line int, rec source.Record) (domain.MenuItem, error) {
	for _, col := range []string{ColCategory, ColItem, ColPrice} {
		if !rec.Has(col) {
			return domain.MenuItem{}, source.Malformed(src, line, col, "missing value")
		}
	}
	price, err := parsePrice(rec.Get(ColPrice))
	if err != nil {
		return domain.MenuItem{}, source.Malformed(src, line, ColPrice, "invalid price")
	}
	return domain.MenuItem{
		Category:      rec.Get(ColCategory),
		Name:          rec.Get(ColItem),
		ServingSize:   rec.Get(ColServingSize),
		Price:         price,
		Calories:      parseCalories(rec.Get(ColCalories)),
		TotalFat:      domain.Nutrient{Amount: rec.Get(ColTotalFat), DailyValue: rec.Get(ColTotalFatDV)},
		Sodium:        domain.Nutrient{Amount: rec.Get(ColSodium), DailyValue: rec.Get(ColSodiumDV)},
		Carbohydrates: domain.Nutrient{Amount: rec.Get(ColCarbohydrates), DailyValue: rec.Get(ColCarbohydratesDV)},
		Protein:       domain.Nutrient{Amount: rec.Get(ColProtein)},
	}, nil
}

func parsePrice(raw string) (decimal.Decimal, error) {
	p, err := decimal.NewFromString(strings.TrimPrefix(raw, "$"))
	if err != nil {
		return decimal.Decimal{}, err
	}
	if p.IsNegative() {
		return decimal.Decimal{}, strconv.ErrRange
	}
	return p, nil
}

// parseCalories is lenient: the column is optional and junk counts as zero.
func parseCalories(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// FindByName returns the first item, in category-then-insertion order, whose
// name equals name ignoring case and surrounding space.
func (s *Store) FindByName(name string) (domain.MenuItem, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.MenuItem{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.categories {
		for _, item := range c.Items {
			if strings.EqualFold(item.Name, name) {
				return item, true
			}
		}
	}
	return domain.MenuItem{}, false
}

// Categories returns a copy of the catalog in display order.
func (s *Store) Categories() []Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Category, len(s.categories))
	for i, c := range s.categories {
		out[i] = Category{Name: c.Name, Items: append([]domain.MenuItem(nil), c.Items...)}
	}
	return out
}

// Items returns the items of one category, or nil when it does not exist.
func (s *Store) Items(category string) []domain.MenuItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[category]
	if !ok {
		return nil
	}
	return append([]domain.MenuItem(nil), s.categories[i].Items...)
}

// Len returns the number of items across all categories.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, c := range s.categories {
		n += len(c.Items)
	}
	return n
}
