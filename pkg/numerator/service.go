// Package numerator provides document auto-numbering.
//
// Numbers have the form PREFIX-YYYYMM-SEQ (e.g. INV-202501-0001) where
// SEQ is unique and monotonically increasing within the (prefix, month)
// scope. Allocation is an atomic UPSERT ... RETURNING on doc_sequences,
// so two concurrent creations can never observe the same value. The
// caller is expected to run allocation inside the same database
// transaction as the document insert: a rolled-back creation may leave
// a gap, but a duplicate number is impossible.
package numerator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Prefixes for the commercial document types.
const (
	PrefixInvoice = "INV"
	PrefixQuote   = "DEVIS"
)

// PadWidth is the zero-padded width of the sequence part.
const PadWidth = 4

// Querier is the minimal database surface the numerator needs.
// Inside a transaction this is the transaction itself.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuerierProvider resolves the querier for the current context. Wiring
// passes the transaction manager's resolver here so that allocation
// joins the caller's transaction when one is open.
type QuerierProvider func(ctx context.Context) Querier

// Service issues document numbers.
type Service struct {
	querier QuerierProvider
}

// New creates a numerator service.
func New(querier QuerierProvider) *Service {
	return &Service{querier: querier}
}

// Next allocates the next number for the given prefix in the calendar
// month of period. The first number of a scope is ...-0001.
func (s *Service) Next(ctx context.Context, prefix string, period time.Time) (string, error) {
	key := periodKey(period)

	var seq int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO doc_sequences (prefix, period, current_val)
		VALUES ($1, $2, 1)
		ON CONFLICT (prefix, period) DO UPDATE SET current_val = doc_sequences.current_val + 1
		RETURNING current_val
	`, prefix, key).Scan(&seq)
	if err != nil {
		return "", fmt.Errorf("next number for %s-%s: %w", prefix, key, err)
	}

	return Format(prefix, period, seq), nil
}

// SyncFromDocuments seeds a scope's counter from the highest number
// already present in the documents table. Used when migrating onto a
// dataset that predates the sequence table. The trailing sequence is
// compared numerically, never as a string, so 0999 < 1000 holds.
func (s *Service) SyncFromDocuments(ctx context.Context, prefix string, period time.Time) error {
	key := periodKey(period)

	var numbers []string
	rows := s.querier(ctx).QueryRow(ctx, `
		SELECT COALESCE(array_agg(number), '{}')
		FROM documents
		WHERE number LIKE $1 || '-' || $2 || '-%'
	`, prefix, key)
	if err := rows.Scan(&numbers); err != nil {
		return fmt.Errorf("collect numbers for %s-%s: %w", prefix, key, err)
	}

	var max int64
	for _, n := range numbers {
		if seq, ok := ParseSequence(n); ok && seq > max {
			max = seq
		}
	}

	var result int64
	err := s.querier(ctx).QueryRow(ctx, `
		INSERT INTO doc_sequences (prefix, period, current_val)
		VALUES ($1, $2, $3)
		ON CONFLICT (prefix, period) DO UPDATE
			SET current_val = GREATEST(doc_sequences.current_val, $3)
		RETURNING current_val
	`, prefix, key, max).Scan(&result)
	if err != nil {
		return fmt.Errorf("sync sequence %s-%s: %w", prefix, key, err)
	}

	return nil
}

// Format builds the full document number.
func Format(prefix string, period time.Time, seq int64) string {
	return fmt.Sprintf("%s-%s-%0*d", prefix, periodKey(period), PadWidth, seq)
}

// ParseSequence extracts the trailing sequence of a formatted number as
// an integer. Returns false for anything that does not look like a
// numerator-issued number.
func ParseSequence(number string) (int64, bool) {
	idx := strings.LastIndex(number, "-")
	if idx < 0 || idx == len(number)-1 {
		return 0, false
	}
	seq, err := strconv.ParseInt(number[idx+1:], 10, 64)
	if err != nil || seq < 1 {
		return 0, false
	}
	return seq, true
}

// Scope returns the human-readable sequence scope of a prefix+period,
// used in error details.
func Scope(prefix string, period time.Time) string {
	return prefix + "-" + periodKey(period)
}

func periodKey(period time.Time) string {
	return period.UTC().Format("200601")
}
