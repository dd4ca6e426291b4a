package services

import (
	"cmp"
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"finance-dashboard/internal/models"
	"finance-dashboard/internal/taxonomy"
)

const (
	batchSize  = 1000
	maxWorkers = 10
)

var monthlyLayout = models.ChartLayout{
	Title:   "Total Number of Transactions",
	BarMode: "stack",
	XAxis:   "Month",
	YAxis:   "Number of Transactions",
}

// snapshot is an immutable loaded table. Load builds a new one and swaps it in.
type snapshot struct {
	id           string
	source       string
	transactions []models.Transaction
	loadedAt     time.Time
}

// Ledger owns the current transaction table and answers every dashboard
// query over it.
type Ledger struct {
	mu       sync.RWMutex
	current  *snapshot
	taxonomy *taxonomy.Taxonomy
	logger   *slog.Logger
}

func NewLedger(tax *taxonomy.Taxonomy, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		taxonomy: tax,
		logger:   logger,
	}
}

// Load replaces the table with records. It either succeeds completely or
// leaves the previous table in place.
func (l *Ledger) Load(ctx context.Context, source string, records []models.Record) error {
	start := time.Now()

	transactions, err := l.normalize(ctx, records)
	if err != nil {
		return err
	}

	snap := &snapshot{
		id:           uuid.NewString(),
		source:       source,
		transactions: transactions,
		loadedAt:     time.Now(),
	}

	l.mu.Lock()
	l.current = snap
	l.mu.Unlock()

	l.logger.Info("transactions loaded",
		"dataset_id", snap.id,
		"source", source,
		"records", len(transactions),
		"duration", time.Since(start),
	)
	return nil
}

// normalize converts records in parallel batches. Each batch writes a
// disjoint range of the output so table order is preserved.
func (l *Ledger) normalize(ctx context.Context, records []models.Record) ([]models.Transaction, error) {
	out := make([]models.Transaction, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)

	for lo := 0; lo < len(records); lo += batchSize {
		hi := min(lo+batchSize, len(records))
		g.Go(func() error {
			for i := lo; i < hi; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				tx, err := l.normalizeRecord(records[i], i+1)
				if err != nil {
					return err
				}
				out[i] = tx
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (l *Ledger) normalizeRecord(rec models.Record, row int) (models.Transaction, error) {
	date, err := time.Parse(models.DateLayout, rec.Date)
	if err != nil {
		return models.Transaction{}, &models.ImportError{
			Kind:   models.ErrDateParse,
			Row:    row,
			Column: "Date",
			Value:  rec.Date,
			Err:    err,
		}
	}

	category, ok := l.taxonomy.Lookup(rec.Category)
	if !ok {
		return models.Transaction{}, &models.ImportError{
			Kind:   models.ErrCategoryLookup,
			Row:    row,
			Column: "Category",
			Value:  rec.Category,
		}
	}

	return models.Transaction{
		Date:                date,
		Month:               time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC),
		Description:         rec.Description,
		OriginalDescription: rec.OriginalDescription,
		Amount:              rec.Amount,
		Type:                rec.Type,
		Category:            category,
		Subcategory:         rec.Category,
		AccountName:         rec.AccountName,
		Labels:              rec.Labels,
		Notes:               rec.Notes,
	}, nil
}

func (l *Ledger) view() *snapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

func (l *Ledger) HasData() bool {
	snap := l.view()
	return snap != nil && len(snap.transactions) > 0
}

// MonthlyAggregate counts transactions per account and month. It reports
// false when there is nothing to chart.
func (l *Ledger) MonthlyAggregate() (models.MonthlyChart, bool) {
	snap := l.view()
	if snap == nil || len(snap.transactions) == 0 {
		return models.MonthlyChart{}, false
	}

	groups := make(map[string]map[time.Time]int)
	for i := range snap.transactions {
		tx := &snap.transactions[i]
		byMonth := groups[tx.AccountName]
		if byMonth == nil {
			byMonth = make(map[time.Time]int)
			groups[tx.AccountName] = byMonth
		}
		byMonth[tx.Month]++
	}

	series := make([]models.Series, 0, len(groups))
	for account, byMonth := range groups {
		points := make([]models.SeriesPoint, 0, len(byMonth))
		for month, count := range byMonth {
			points = append(points, models.SeriesPoint{Month: month, Count: count})
		}
		slices.SortFunc(points, func(a, b models.SeriesPoint) int {
			return a.Month.Compare(b.Month)
		})
		series = append(series, models.Series{Name: account, Points: points})
	}
	slices.SortFunc(series, func(a, b models.Series) int {
		return cmp.Compare(a.Name, b.Name)
	})

	return models.MonthlyChart{Series: series, Layout: monthlyLayout}, true
}

// CategoryDistribution counts transactions per coarse category, in taxonomy
// order, including categories with no transactions.
func (l *Ledger) CategoryDistribution() ([]models.Slice, bool) {
	snap := l.view()
	if snap == nil {
		return nil, false
	}

	counts := make(map[string]int)
	for i := range snap.transactions {
		counts[snap.transactions[i].Category]++
	}

	categories := l.taxonomy.Categories()
	out := make([]models.Slice, 0, len(categories))
	for _, c := range categories {
		out = append(out, models.Slice{Label: c, Value: counts[c]})
	}
	return out, true
}

// Explorer returns one point per transaction matching every filter in q.
// Credit amounts are negated so they plot below the axis.
func (l *Ledger) Explorer(q ExplorerQuery) []models.ExplorerPoint {
	snap := l.view()
	if snap == nil {
		return []models.ExplorerPoint{}
	}

	preds := q.predicates()
	points := make([]models.ExplorerPoint, 0)

rows:
	for i := range snap.transactions {
		tx := &snap.transactions[i]
		for _, keep := range preds {
			if !keep(tx) {
				continue rows
			}
		}

		amount := tx.Amount
		if tx.Type == models.Credit {
			amount = amount.Neg()
		}
		points = append(points, models.ExplorerPoint{
			Date:        tx.Date,
			Amount:      amount,
			Description: tx.Description,
		})
	}
	return points
}

func accountOf(tx *models.Transaction) string     { return tx.AccountName }
func merchantOf(tx *models.Transaction) string    { return tx.Description }
func categoryOf(tx *models.Transaction) string    { return tx.Category }
func subcategoryOf(tx *models.Transaction) string { return tx.Subcategory }

func (l *Ledger) Accounts() []string      { return distinct(l.view(), accountOf) }
func (l *Ledger) Merchants() []string     { return distinct(l.view(), merchantOf) }
func (l *Ledger) Categories() []string    { return distinct(l.view(), categoryOf) }
func (l *Ledger) Subcategories() []string { return distinct(l.view(), subcategoryOf) }

// TaxonomyCategories is the full ordered category list used for legends.
func (l *Ledger) TaxonomyCategories() []string {
	return l.taxonomy.Categories()
}

// distinct projects the table onto one column, keeping first-seen order.
func distinct(snap *snapshot, field func(tx *models.Transaction) string) []string {
	if snap == nil {
		return nil
	}

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for i := range snap.transactions {
		v := field(&snap.transactions[i])
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func (l *Ledger) DateRange() (models.DateRange, bool) {
	snap := l.view()
	if snap == nil || len(snap.transactions) == 0 {
		return models.DateRange{}, false
	}

	r := models.DateRange{Min: snap.transactions[0].Date, Max: snap.transactions[0].Date}
	for i := range snap.transactions[1:] {
		d := snap.transactions[i+1].Date
		if d.Before(r.Min) {
			r.Min = d
		}
		if d.After(r.Max) {
			r.Max = d
		}
	}
	return r, true
}

// Stats reports the loaded dataset for monitoring.
func (l *Ledger) Stats() map[string]any {
	snap := l.view()
	if snap == nil {
		return map[string]any{
			"loaded":          false,
			"taxonomy_labels": l.taxonomy.Len(),
		}
	}

	return map[string]any{
		"loaded":          true,
		"dataset_id":      snap.id,
		"source":          snap.source,
		"record_count":    len(snap.transactions),
		"last_loaded":     snap.loadedAt,
		"accounts":        len(distinct(snap, accountOf)),
		"merchants":       len(distinct(snap, merchantOf)),
		"taxonomy_labels": l.taxonomy.Len(),
	}
}
