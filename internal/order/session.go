// Package order implements the cart state machine.
//
// A Session is Empty (no lines, not in progress) or Active (at least one
// line, in progress). AddItem moves Empty to Active; Cancel and a successful
// Confirm move Active back to Empty. Cancel and Confirm on an Empty session
// return ErrNoActiveOrder and change nothing.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"restaurant-chatbot/internal/domain"
)

var (
	ErrNoActiveOrder = errors.New("order: no active order")
	ErrRecordFailed  = errors.New("order: record failed")
)

// Sink receives the records of a confirmed order.
type Sink interface {
	Append(ctx context.Context, records []domain.OrderRecord) error
}

// Receipt summarises a confirmed order.
type Receipt struct {
	OrderID  string
	Lines    []domain.OrderLine
	Total    decimal.Decimal
	PlacedAt time.Time
}

// Session is a single mutable cart. It is not safe for concurrent use.
type Session struct {
	sink       Sink
	lines      []domain.OrderLine
	inProgress bool
}

// NewSession returns an Empty session that records confirmed orders to sink.
func NewSession(sink Sink) (*Session, error) {
	if sink == nil {
		return nil, errors.New("order: sink must not be nil")
	}
	return &Session{sink: sink}, nil
}

// AddItem appends a line for qty units of item and marks the order in
// progress. A qty below 1 counts as 1. Lines for the same item are never
// merged.
func (s *Session) AddItem(item domain.MenuItem, qty int) domain.OrderLine {
	if qty < 1 {
		qty = 1
	}
	line := domain.OrderLine{
		Category:    item.Category,
		Name:        item.Name,
		ServingSize: item.ServingSize,
		Quantity:    qty,
		Price:       item.Price.Mul(decimal.NewFromInt(int64(qty))),
	}
	s.lines = append(s.lines, line)
	s.inProgress = true
	return line
}

// Cancel drops every line and returns how many there were.
func (s *Session) Cancel() (int, error) {
	if !s.active() {
		return 0, ErrNoActiveOrder
	}
	n := len(s.lines)
	s.reset()
	return n, nil
}

// Confirm records every line to the sink stamped with now, resets the
// session and returns the receipt. If the sink fails the session is left
// untouched and the error wraps ErrRecordFailed.
func (s *Session) Confirm(ctx context.Context, now time.Time) (Receipt, error) {
	if !s.active() {
		return Receipt{}, ErrNoActiveOrder
	}
	rcpt := Receipt{
		OrderID:  newOrderID(),
		Lines:    s.Lines(),
		Total:    s.Total(),
		PlacedAt: now,
	}
	records := make([]domain.OrderRecord, len(rcpt.Lines))
	for i, l := range rcpt.Lines {
		records[i] = domain.OrderRecord{
			OrderID:   rcpt.OrderID,
			Item:      l.Name,
			Quantity:  l.Quantity,
			Price:     l.Price,
			Timestamp: now,
		}
	}
	if err := s.sink.Append(ctx, records); err != nil {
		return Receipt{}, fmt.Errorf("%w: %w", ErrRecordFailed, err)
	}
	s.reset()
	return rcpt, nil
}

// Lines returns a copy of the current lines.
func (s *Session) Lines() []domain.OrderLine {
	return append([]domain.OrderLine(nil), s.lines...)
}

// InProgress reports whether the session is Active.
func (s *Session) InProgress() bool { return s.inProgress }

// Total is the sum of the line prices.
func (s *Session) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Price)
	}
	return total
}

func (s *Session) active() bool {
	return s.inProgress && len(s.lines) > 0
}

func (s *Session) reset() {
	s.lines = nil
	s.inProgress = false
}

var newOrderID = func() string {
	return uuid.NewString()
}
