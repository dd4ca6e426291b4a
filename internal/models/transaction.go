package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the fixed layout of the Date column in imported statements.
const DateLayout = "1/2/2006"

type TransactionType string

const (
	Debit  TransactionType = "debit"
	Credit TransactionType = "credit"
)

func ParseTransactionType(s string) (TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(Debit):
		return Debit, nil
	case string(Credit):
		return Credit, nil
	default:
		return "", fmt.Errorf("unknown transaction type %q", s)
	}
}

// Record is one ingested row before the ledger normalizes it.
type Record struct {
	Date                string
	Description         string
	OriginalDescription string
	Amount              decimal.Decimal
	Type                TransactionType
	Category            string
	AccountName         string
	Labels              string
	Notes               string
}

type Transaction struct {
	Date                time.Time
	Month               time.Time
	Description         string
	OriginalDescription string
	Amount              decimal.Decimal
	Type                TransactionType
	Category            string
	Subcategory         string
	AccountName         string
	Labels              string
	Notes               string
}

type SeriesPoint struct {
	Month time.Time `json:"month"`
	Count int       `json:"count"`
}

// Series is one stacked layer of the monthly bar chart.
type Series struct {
	Name   string        `json:"name"`
	Points []SeriesPoint `json:"points"`
}

type ChartLayout struct {
	Title   string `json:"title"`
	BarMode string `json:"barmode"`
	XAxis   string `json:"xaxis"`
	YAxis   string `json:"yaxis"`
}

type MonthlyChart struct {
	Series []Series    `json:"series"`
	Layout ChartLayout `json:"layout"`
}

type Slice struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

type ExplorerPoint struct {
	Date        time.Time       `json:"date"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type DateRange struct {
	Min time.Time `json:"min"`
	Max time.Time `json:"max"`
}
