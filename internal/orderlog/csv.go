// Package orderlog is the append-only CSV record of confirmed orders.
package orderlog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"restaurant-chatbot/internal/domain"
	"restaurant-chatbot/internal/source"
)

// TimestampLayout is the on-disk timestamp format.
const TimestampLayout = "2006-01-02 15:04:05"

const (
	colOrder     = "Order"
	colItem      = "Item"
	colQuantity  = "Quantity"
	colPrice     = "Price"
	colTimestamp = "Timestamp"
)

var header = []string{colOrder, colItem, colQuantity, colPrice, colTimestamp}

// CSVSink appends order records to a CSV file, writing the header when the
// file is new or empty.
type CSVSink struct {
	path string
	mu   sync.Mutex
}

func NewCSVSink(path string) (*CSVSink, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("orderlog: path must not be empty")
	}
	return &CSVSink{path: path}, nil
}

// Append writes one row per record.
func (s *CSVSink) Append(ctx context.Context, records []domain.OrderRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("orderlog: open %s: %w", s.path, err)
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("orderlog: stat %s: %w", s.path, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("orderlog: write header: %w", err)
		}
	}
	for _, r := range records {
		row := []string{
			r.OrderID,
			r.Item,
			strconv.Itoa(r.Quantity),
			formatPrice(r.Price),
			r.Timestamp.Format(TimestampLayout),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("orderlog: write record: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("orderlog: flush: %w", err)
	}
	return f.Sync()
}

// formatPrice writes at least two decimals and never rounds away precision.
func formatPrice(p decimal.Decimal) string {
	places := int32(2)
	if e := -p.Exponent(); e > places {
		places = e
	}
	return p.StringFixed(places)
}

// ReadAll reads every record back from path, parsing timestamps in loc.
// Malformed rows are skipped and reported joined, like the catalog loader.
func ReadAll(ctx context.Context, path string, loc *time.Location) ([]domain.OrderRecord, error) {
	if loc == nil {
		loc = time.Local
	}
	var out []domain.OrderRecord
	err := source.Read(ctx, source.File{Path: path}, header, func(line int, rec source.Record) error {
		qty, err := strconv.Atoi(rec.Get(colQuantity))
		if err != nil {
			return source.Malformed(path, line, colQuantity, "invalid quantity")
		}
		price, err := decimal.NewFromString(rec.Get(colPrice))
		if err != nil {
			return source.Malformed(path, line, colPrice, "invalid price")
		}
		ts, err := time.ParseInLocation(TimestampLayout, rec.Get(colTimestamp), loc)
		if err != nil {
			return source.Malformed(path, line, colTimestamp, "invalid timestamp")
		}
		out = append(out, domain.OrderRecord{
			OrderID:   rec.Get(colOrder),
			Item:      rec.Get(colItem),
			Quantity:  qty,
			Price:     price,
			Timestamp: ts,
		})
		return nil
	})
	return out, err
}
