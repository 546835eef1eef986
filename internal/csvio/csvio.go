// Package csvio translates between transactions and their CSV form.
//
// The format is UTF-8, comma separated, with the header
// "date,amount,category,description". Dates are YYYY-MM-DD and amounts are
// plain signed decimals with two fractional digits.
package csvio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

const byteOrderMark = "\ufeff"

// Header is the fixed column order.
var Header = []string{"date", "amount", "category", "description"}

// Creator persists one transaction and returns its id.
type Creator interface {
	Create(ctx context.Context, t core.Transaction) (int64, error)
}

// Result reports the outcome of an import. Rejected rows never stop the
// rest of the file from being imported.
type Result struct {
	BatchID  string
	Accepted []int64
	Rejected []core.ImportRowError
}

// Export writes the header followed by one row per transaction.
func Export(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, t := range txs {
		rec := []string{
			t.Date.String(),
			core.FormatAmount(t.Amount),
			t.Category,
			t.Description,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write transaction %d: %w", t.ID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// ExportString is Export into a string.
func ExportString(txs []core.Transaction) (string, error) {
	var b strings.Builder
	if err := Export(&b, txs); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Import reads every record from r and hands the well-formed ones to c.
//
// Row numbers are 1-based positions of records in the file, header
// included, so they match what a spreadsheet shows for single-line records.
// A first record equal to the header (case-insensitive) is skipped. The
// returned error is non-nil only if the reader fails or ctx is cancelled;
// rows imported before that point stay imported.
func Import(ctx context.Context, r io.Reader, c Creator) (Result, error) {
	res := Result{
		BatchID:  uuid.NewString(),
		Accepted: []int64{},
		Rejected: []core.ImportRowError{},
	}
	logger := slog.Default().With(log.FieldComponent, log.ComponentCSV, log.FieldBatchID, res.BatchID)

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	for row := 1; ; row++ {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.Rejected = append(res.Rejected, core.ImportRowError{Row: row, Reason: perr.Err.Error()})
				continue
			}
			return res, fmt.Errorf("read csv row %d: %w", row, err)
		}

		if row == 1 {
			// Spreadsheet exports often start with a UTF-8 byte order mark.
			rec[0] = strings.TrimPrefix(rec[0], byteOrderMark)
			if isHeader(rec) {
				continue
			}
		}

		t, rowErr := parseRecord(rec)
		if rowErr != nil {
			res.Rejected = append(res.Rejected, core.ImportRowError{Row: row, Reason: rowErr.Error()})
			continue
		}

		id, err := c.Create(ctx, t)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return res, ctxErr
			}
			res.Rejected = append(res.Rejected, core.ImportRowError{Row: row, Reason: rejectReason(err)})
			continue
		}
		res.Accepted = append(res.Accepted, id)
	}

	logger.DebugContext(ctx, "CSV rows processed",
		log.FieldAccepted, len(res.Accepted),
		log.FieldRejected, len(res.Rejected))
	return res, nil
}

func isHeader(rec []string) bool {
	if len(rec) != len(Header) {
		return false
	}
	for i, h := range Header {
		if !strings.EqualFold(strings.TrimSpace(rec[i]), h) {
			return false
		}
	}
	return true
}

func parseRecord(rec []string) (core.Transaction, error) {
	if len(rec) < len(Header) {
		return core.Transaction{}, fmt.Errorf("missing column: expected %d columns, got %d", len(Header), len(rec))
	}
	if len(rec) > len(Header) {
		return core.Transaction{}, fmt.Errorf("unexpected extra columns: expected %d columns, got %d", len(Header), len(rec))
	}

	date, err := core.ParseDate(rec[0])
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(rec[1])
	if err != nil {
		return core.Transaction{}, err
	}
	category := strings.TrimSpace(rec[2])
	if category == "" {
		return core.Transaction{}, core.NewValidationError("category", "must not be empty")
	}

	return core.Transaction{
		Date:        date,
		Amount:      amount,
		Category:    category,
		Description: rec[3],
	}, nil
}

// rejectReason keeps validation messages short and keeps the cause of
// storage failures.
func rejectReason(err error) string {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	return err.Error()
}
