// Package ingest turns an uploaded bank or card export into records the
// ledger can load. It has no side effects: callers decide what to do with
// the parsed rows.
package ingest

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"finance-dashboard/internal/models"
)

const (
	ColDate                = "Date"
	ColDescription         = "Description"
	ColOriginalDescription = "Original Description"
	ColAmount              = "Amount"
	ColTransactionType     = "Transaction Type"
	ColCategory            = "Category"
	ColAccountName         = "Account Name"
	ColLabels              = "Labels"
	ColNotes               = "Notes"
)

var requiredColumns = []string{
	ColDate,
	ColDescription,
	ColAccountName,
	ColAmount,
	ColTransactionType,
	ColCategory,
}

type format int

const (
	formatCSV format = iota
	formatSpreadsheet
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse decodes a transport-encoded upload (a data URL such as
// "data:text/csv;base64,...", or bare base64) and parses it according to the
// extension of filename.
func Parse(payload, filename string) ([]models.Record, error) {
	if _, err := detectFormat(filename); err != nil {
		return nil, err
	}

	raw, err := decodePayload(payload)
	if err != nil {
		return nil, &models.ImportError{Kind: models.ErrMalformedInput, Err: err}
	}

	return Decode(raw, filename)
}

// ParseFile reads a statement export from disk.
func ParseFile(path string) ([]models.Record, error) {
	if _, err := detectFormat(path); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Decode(raw, filepath.Base(path))
}

// Decode parses already-decoded file bytes.
func Decode(raw []byte, filename string) ([]models.Record, error) {
	f, err := detectFormat(filename)
	if err != nil {
		return nil, err
	}

	var rows [][]string
	switch f {
	case formatCSV:
		rows, err = readCSV(raw)
	case formatSpreadsheet:
		rows, err = readSpreadsheet(raw)
	}
	if err != nil {
		return nil, &models.ImportError{Kind: models.ErrMalformedInput, Err: err}
	}

	return recordsFromRows(rows)
}

func detectFormat(filename string) (format, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	switch ext {
	case ".csv":
		return formatCSV, nil
	case ".xls", ".xlsx":
		return formatSpreadsheet, nil
	}
	return 0, &models.ImportError{
		Kind:  models.ErrUnsupportedFormat,
		Value: filename,
		Err:   fmt.Errorf("extension %q is not one of .csv, .xls, .xlsx", ext),
	}
}

func decodePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, errors.New("empty payload")
	}

	data := payload
	if header, body, ok := strings.Cut(payload, ","); ok {
		if strings.HasPrefix(header, "data:") && !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("data url %q is not base64 encoded", header)
		}
		data = body
	}

	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode base64: %w", err)
	}
	return raw, nil
}

func readCSV(raw []byte) ([][]string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readSpreadsheet(raw []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	// Raw values keep amounts unformatted; date cells come back as serial numbers.
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	// Mac workbooks may count serial dates from 1904 instead of 1900.
	props, err := f.GetWorkbookProps()
	if err != nil {
		return nil, fmt.Errorf("read workbook properties: %w", err)
	}
	date1904 := props.Date1904 != nil && *props.Date1904

	dateCol, headerSeen := -1, false
	for i, row := range rows {
		if isBlank(row) {
			continue
		}
		if !headerSeen {
			dateCol = headerIndex(row)[strings.ToLower(ColDate)] - 1
			headerSeen = true
			continue
		}
		if dateCol >= 0 && dateCol < len(row) {
			rows[i][dateCol] = serialToDate(row[dateCol], date1904)
		}
	}
	return rows, nil
}

// serialToDate rewrites an Excel serial date into the statement date layout.
// Text cells are returned untouched.
func serialToDate(cell string, date1904 bool) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
	if err != nil {
		return cell
	}
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return cell
	}
	return t.Format(models.DateLayout)
}

// headerIndex maps lower-cased column names to 1-based positions so that a
// zero lookup means "absent".
func headerIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		if _, dup := idx[name]; !dup {
			idx[name] = i + 1
		}
	}
	return idx
}

func recordsFromRows(rows [][]string) ([]models.Record, error) {
	start := 0
	for start < len(rows) && isBlank(rows[start]) {
		start++
	}
	if start == len(rows) {
		return nil, &models.ImportError{Kind: models.ErrMalformedInput, Err: errors.New("no header row")}
	}

	cols := headerIndex(rows[start])
	for _, name := range requiredColumns {
		if cols[strings.ToLower(name)] == 0 {
			return nil, &models.ImportError{
				Kind:   models.ErrMalformedInput,
				Column: name,
				Err:    errors.New("missing required column"),
			}
		}
	}

	records := make([]models.Record, 0, len(rows)-start-1)
	rowNum := 0
	for _, row := range rows[start+1:] {
		if isBlank(row) {
			continue
		}
		rowNum++

		rec, err := recordFromRow(row, cols, rowNum)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

func recordFromRow(row []string, cols map[string]int, rowNum int) (models.Record, error) {
	cell := func(name string) string {
		pos := cols[strings.ToLower(name)]
		if pos == 0 || pos > len(row) {
			return ""
		}
		return strings.TrimSpace(row[pos-1])
	}

	date := cell(ColDate)
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		return models.Record{}, &models.ImportError{
			Kind:   models.ErrDateParse,
			Row:    rowNum,
			Column: ColDate,
			Value:  date,
			Err:    err,
		}
	}

	amountStr := cell(ColAmount)
	amount, err := parseAmount(amountStr)
	if err != nil {
		return models.Record{}, &models.ImportError{
			Kind:   models.ErrMalformedInput,
			Row:    rowNum,
			Column: ColAmount,
			Value:  amountStr,
			Err:    err,
		}
	}

	typeStr := cell(ColTransactionType)
	txType, err := models.ParseTransactionType(typeStr)
	if err != nil {
		return models.Record{}, &models.ImportError{
			Kind:   models.ErrMalformedInput,
			Row:    rowNum,
			Column: ColTransactionType,
			Value:  typeStr,
			Err:    err,
		}
	}

	return models.Record{
		Date:                date,
		Description:         cell(ColDescription),
		OriginalDescription: cell(ColOriginalDescription),
		Amount:              amount,
		Type:                txType,
		Category:            cell(ColCategory),
		AccountName:         cell(ColAccountName),
		Labels:              cell(ColLabels),
		Notes:               cell(ColNotes),
	}, nil
}

// parseAmount accepts plain decimals as well as "$1,234.56" and the
// accounting form "(12.00)".
func parseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	if s == "" {
		return decimal.Zero, errors.New("empty amount")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	if negative {
		d = d.Neg()
	}
	return d, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
