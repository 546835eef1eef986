package services

import (
	"context"
	"fmt"
	"io"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/chart"
	"fintrack/internal/core"
	"fintrack/internal/csvio"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/storage"
)

// Options configures a LedgerService.
type Options struct {
	CacheSize int // 0 disables report caching
	CacheTTL  time.Duration
	Chart     chart.Options
	Logger    *log.Logger
}

// Charts holds the encoded images produced by RenderCharts.
type Charts struct {
	Format   chart.Format
	Category []byte
	Monthly  []byte
}

// LedgerService orchestrates transaction storage, reports and file formats.
// Aggregates are cached per filter; any write drops the whole cache.
type LedgerService struct {
	db         *storage.DB
	repo       *storage.TransactionRepository
	categories *storage.CategoryRegistry
	logger     *log.Logger
	chartOpts  chart.Options

	byCategory cache.Cache[[]report.CategoryTotal]
	byMonth    cache.Cache[[]report.MonthTotal]
	summaries  cache.Cache[report.Summary]
}

func NewLedgerService(db *storage.DB, opts Options) *LedgerService {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	s := &LedgerService{
		db:         db,
		repo:       storage.NewTransactionRepository(db),
		categories: storage.NewCategoryRegistry(db),
		logger:     logger.WithComponent(log.ComponentLedger),
		chartOpts:  opts.Chart,
	}
	if opts.CacheSize > 0 {
		s.byCategory = cache.NewLRUCache[[]report.CategoryTotal](opts.CacheSize, opts.CacheTTL)
		s.byMonth = cache.NewLRUCache[[]report.MonthTotal](opts.CacheSize, opts.CacheTTL)
		s.summaries = cache.NewLRUCache[report.Summary](opts.CacheSize, opts.CacheTTL)
	}
	return s
}

// CreateTransaction stores t and returns its id.
func (s *LedgerService) CreateTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	id, err := s.repo.Create(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("create transaction: %w", err)
	}
	s.invalidate()
	return id, nil
}

// UpdateTransaction replaces the user data of transaction id.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id int64, t core.Transaction) error {
	if err := s.repo.Update(ctx, id, t); err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	s.invalidate()
	return nil
}

// DeleteTransaction removes transaction id.
func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.invalidate()
	return nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id int64) (core.Transaction, error) {
	return s.repo.Get(ctx, id)
}

// ListTransactions returns the transactions matching f in the order given by sort.
func (s *LedgerService) ListTransactions(ctx context.Context, f core.Filter, sort core.Sort) ([]core.Transaction, error) {
	return s.repo.Query(ctx, f, sort)
}

func (s *LedgerService) CountTransactions(ctx context.Context, f core.Filter) (int, error) {
	return s.repo.Count(ctx, f)
}

func (s *LedgerService) ListCategories(ctx context.Context) ([]string, error) {
	return s.categories.List(ctx)
}

func (s *LedgerService) AddCategory(ctx context.Context, label string) error {
	if err := s.categories.Add(ctx, label); err != nil {
		return fmt.Errorf("add category: %w", err)
	}
	return nil
}

// RemoveCategory fails with an InUseError while transactions reference label.
func (s *LedgerService) RemoveCategory(ctx context.Context, label string) error {
	if err := s.categories.Remove(ctx, label); err != nil {
		return fmt.Errorf("remove category: %w", err)
	}
	return nil
}

// CategoryTotals returns the per-category net of the transactions matching f,
// largest absolute total first.
func (s *LedgerService) CategoryTotals(ctx context.Context, f core.Filter) ([]report.CategoryTotal, error) {
	out, err := cached(ctx, s.logger, s.byCategory, f.Key(), func() ([]report.CategoryTotal, error) {
		txs, err := s.repo.Query(ctx, f, core.DefaultSort)
		if err != nil {
			return nil, err
		}
		return report.SortedCategories(report.ByCategory(txs)), nil
	})
	if err != nil {
		return nil, fmt.Errorf("category totals: %w", err)
	}
	return slices.Clone(out), nil
}

// MonthlyTotals returns the per-month net of the transactions matching f in
// ascending month order. With dense set, months without transactions are
// included as zero, spanning the filter's date range where given and the
// data's range otherwise.
func (s *LedgerService) MonthlyTotals(ctx context.Context, f core.Filter, dense bool) ([]report.MonthTotal, error) {
	key := fmt.Sprintf("%s|dense=%t", f.Key(), dense)
	out, err := cached(ctx, s.logger, s.byMonth, key, func() ([]report.MonthTotal, error) {
		txs, err := s.repo.Query(ctx, f, core.DefaultSort)
		if err != nil {
			return nil, err
		}
		if !dense {
			return report.ByMonth(txs), nil
		}
		from, to, ok := report.Span(txs)
		if !f.From.IsZero() {
			from = f.From.YearMonth()
		}
		if !f.To.IsZero() {
			to = f.To.YearMonth()
		}
		if !ok && (f.From.IsZero() || f.To.IsZero()) {
			return []report.MonthTotal{}, nil
		}
		return report.ByMonthDense(txs, from, to), nil
	})
	if err != nil {
		return nil, fmt.Errorf("monthly totals: %w", err)
	}
	return slices.Clone(out), nil
}

// Summary returns income, expense and net of the transactions matching f.
func (s *LedgerService) Summary(ctx context.Context, f core.Filter) (report.Summary, error) {
	out, err := cached(ctx, s.logger, s.summaries, f.Key(), func() (report.Summary, error) {
		txs, err := s.repo.Query(ctx, f, core.DefaultSort)
		if err != nil {
			return report.Summary{}, err
		}
		return report.Summarize(txs), nil
	})
	if err != nil {
		return report.Summary{}, fmt.Errorf("summary: %w", err)
	}
	return out, nil
}

// ExportCSV writes the transactions matching f to w and returns how many
// rows were written.
func (s *LedgerService) ExportCSV(ctx context.Context, w io.Writer, f core.Filter, sort core.Sort) (int, error) {
	txs, err := s.repo.Query(ctx, f, sort)
	if err != nil {
		return 0, fmt.Errorf("export csv: %w", err)
	}
	if err := csvio.Export(w, txs); err != nil {
		return 0, fmt.Errorf("export csv: %w", err)
	}
	s.logger.InfoContext(ctx, "CSV export finished",
		log.FieldOperation, log.OpExport,
		log.FieldCount, len(txs))
	return len(txs), nil
}

// ImportCSV creates one transaction per well-formed row of r. Rows are
// independent: a rejected row does not undo the rows before it.
func (s *LedgerService) ImportCSV(ctx context.Context, r io.Reader) (csvio.Result, error) {
	res, err := csvio.Import(ctx, r, s.repo)
	if len(res.Accepted) > 0 {
		s.invalidate()
	}
	fields := log.NewFields().
		WithOperation(log.OpImport).
		WithImport(res.BatchID, len(res.Accepted), len(res.Rejected))
	if err != nil {
		s.logger.ErrorContext(ctx, "CSV import aborted", fields.WithError(err).ToSlice()...)
		return res, fmt.Errorf("import csv: %w", err)
	}
	s.logger.InfoContext(ctx, "CSV import finished", fields.ToSlice()...)
	logger := s.logger.With(log.FieldBatchID, res.BatchID)
	for _, rej := range res.Rejected {
		logger.DebugContext(ctx, "CSV row rejected", log.FieldError, rej.Error())
	}
	return res, nil
}

// RenderCharts draws the category and monthly charts for f. Both reports are
// read first; the images are then encoded concurrently.
func (s *LedgerService) RenderCharts(ctx context.Context, f core.Filter, opts chart.Options) (Charts, error) {
	opts = s.mergeChartOptions(opts)

	cats, err := s.CategoryTotals(ctx, f)
	if err != nil {
		return Charts{}, err
	}
	months, err := s.MonthlyTotals(ctx, f, true)
	if err != nil {
		return Charts{}, err
	}
	if len(cats) == 0 {
		return Charts{}, chart.ErrNoData
	}

	start := time.Now()
	out := Charts{Format: opts.Format}
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		img, err := chart.CategoryBars(cats, opts)
		if err != nil {
			return fmt.Errorf("category chart: %w", err)
		}
		out.Category = img
		return nil
	})
	g.Go(func() error {
		img, err := chart.MonthlyBars(months, opts)
		if err != nil {
			return fmt.Errorf("monthly chart: %w", err)
		}
		out.Monthly = img
		return nil
	})
	if err := g.Wait(); err != nil {
		return Charts{}, err
	}

	s.logger.InfoContext(ctx, "Charts rendered",
		log.FieldOperation, log.OpRender,
		"format", string(out.Format),
		log.FieldCount, len(cats),
		log.FieldDurationMs, time.Since(start).Milliseconds())
	return out, nil
}

func (s *LedgerService) mergeChartOptions(opts chart.Options) chart.Options {
	if opts.Width <= 0 {
		opts.Width = s.chartOpts.Width
	}
	if opts.Height <= 0 {
		opts.Height = s.chartOpts.Height
	}
	if opts.Format == "" {
		opts.Format = s.chartOpts.Format
	}
	if opts.Currency == "" {
		opts.Currency = s.chartOpts.Currency
	}
	if opts.Format == "" {
		opts.Format = chart.PNG
	}
	return opts
}

func (s *LedgerService) invalidate() {
	if s.byCategory != nil {
		s.byCategory.Purge()
		s.byMonth.Purge()
		s.summaries.Purge()
	}
}

// Close closes the underlying storage.
func (s *LedgerService) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close ledger service: %w", err)
	}
	return nil
}

// cached returns the value stored under key, computing and storing it on a
// miss. Expired entries are dropped before a new one is stored. A nil cache
// always computes.
func cached[T any](ctx context.Context, logger *log.Logger, c cache.Cache[T], key string, compute func() (T, error)) (T, error) {
	if c != nil {
		if v, ok := c.Get(key); ok {
			logger.DebugContext(ctx, "Report served",
				log.FieldOperation, log.OpReport,
				log.FieldCacheHit, true,
				log.FieldFilter, key)
			return v, nil
		}
	}
	v, err := compute()
	if err != nil {
		var zero T
		return zero, err
	}
	if c != nil {
		c.CleanExpired()
		c.Set(key, v)
	}
	logger.DebugContext(ctx, "Report computed",
		log.FieldOperation, log.OpReport,
		log.FieldCacheHit, false,
		log.FieldFilter, key)
	return v, nil
}
