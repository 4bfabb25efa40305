// Package delivery holds the places the restaurant delivers to.
package delivery

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"restaurant-chatbot/internal/domain"
	"restaurant-chatbot/internal/source"
)

const (
	ColCity       = "City"
	ColStateShort = "State short"
	colDistrict   = "District"

	// DefaultPreviewLimit is the number of areas shown when no limit is given.
	DefaultPreviewLimit = 10
)

// ErrUnsupportedSchema is returned for the district-based locality schema.
// Only the City / State short schema is supported.
var ErrUnsupportedSchema = errors.New("delivery: unsupported schema: expected City and State short columns")

// Store is the ordered list of delivery areas. Duplicates are kept.
type Store struct {
	mu    sync.RWMutex
	areas []domain.DeliveryArea
}

func NewStore() *Store {
	return &Store{}
}

// Load replaces the stored areas with the ones read from src, labelled
// "City, ST". Error behaviour matches catalog.Store.Load.
func (s *Store) Load(ctx context.Context, src source.Source) (int, error) {
	var areas []domain.DeliveryArea
	err := source.Read(ctx, src, []string{ColCity, ColStateShort}, func(line int, rec source.Record) error {
		for _, col := range []string{ColCity, ColStateShort} {
			if !rec.Has(col) {
				return source.Malformed(src.Name(), line, col, "missing value")
			}
		}
		areas = append(areas, domain.DeliveryArea(fmt.Sprintf("%s, %s", rec.Get(ColCity), rec.Get(ColStateShort))))
		return nil
	})
	var mal *source.MalformedRecordError
	if errors.As(err, &mal) && slices.Contains(mal.Header, colDistrict) {
		err = fmt.Errorf("%w: %s", ErrUnsupportedSchema, src.Name())
	}

	s.mu.Lock()
	s.areas = areas
	s.mu.Unlock()
	return len(areas), err
}

// Preview returns the first limit areas in stored order, or all of them when
// fewer exist. A limit <= 0 means DefaultPreviewLimit.
func (s *Store) Preview(limit int) []domain.DeliveryArea {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit > len(s.areas) {
		limit = len(s.areas)
	}
	return append([]domain.DeliveryArea(nil), s.areas[:limit]...)
}

// Len returns the number of stored areas.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.areas)
}
