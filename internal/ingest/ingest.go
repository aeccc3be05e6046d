// Package ingest turns raw bank statement CSV exports into normalized rows.
//
// Banks do not agree on column names, date formats or how to write negative
// numbers, so parsing is heuristic per column and per value. Failures are
// recorded on the row itself, the only hard error is a structurally
// unreadable file.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseStatus describes whether a row could be fully parsed.
type ParseStatus string

const (
	ParseStatusOK    ParseStatus = "ok"
	ParseStatusError ParseStatus = "error"
)

// ParsedRow is one CSV line after column mapping and type coercion.
type ParsedRow struct {
	// RowIndex is the zero-based position in the source file. It is assigned
	// at ingestion time and never changes, so it can be used as a join key
	// before database IDs exist.
	RowIndex int `json:"rowIndex"`

	// Raw preserves the original column to value mapping for audit purposes.
	Raw map[string]string `json:"raw"`

	ParseStatus ParseStatus `json:"parseStatus"`
	ParseError  string      `json:"parseError,omitempty"`

	DateRaw    string `json:"dateRaw,omitempty"`
	DateChosen string `json:"dateChosen,omitempty"` // ISO date (YYYY-MM-DD), empty when unresolved

	AmountRaw string           `json:"amountRaw,omitempty"`
	Amount    *decimal.Decimal `json:"amountSigned,omitempty"` // negative = money out

	DescriptionRaw string `json:"descriptionRaw,omitempty"`
	MerchantRaw    string `json:"merchantRaw,omitempty"`
	MerchantNorm   string `json:"merchantNorm,omitempty"`
}

// Column synonyms per logical field. The first candidate that matches a
// header case-insensitively wins, so more specific names go first.
var (
	dateColumns = []string{
		"date", "transaction date", "posted date", "post date",
		"posting date", "trans date", "transaction_date", "value date",
	}
	amountColumns = []string{
		"amount", "transaction amount", "amount (usd)", "amount usd", "amt",
	}
	debitColumns = []string{
		"debit", "debit amount", "withdrawal", "withdrawals", "money out",
	}
	creditColumns = []string{
		"credit", "credit amount", "deposit", "deposits", "money in",
	}
	descriptionColumns = []string{
		"description", "payee", "merchant", "name", "details", "memo",
		"transaction description", "narrative",
	}
)

// Parse reads a CSV bank statement and returns one ParsedRow per data line
// together with the trimmed header row.
//
// Individual rows never fail the whole parse. A row that has a value which
// cannot be interpreted is returned with ParseStatusError and a diagnostic,
// rows with genuinely empty fields stay ok with the fields unset. Only a
// file the CSV tokenizer cannot read at all returns an error.
func Parse(r io.Reader) ([]ParsedRow, []string, error) {
	reader := csv.NewReader(r)

	// Bank exports frequently have ragged lines, e.g. a trailing balance
	// column that is only present on some rows
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return []ParsedRow{}, []string{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("could not read CSV header: %w", err)
	}

	headers := make([]string, len(header))
	for i, h := range header {
		headers[i] = strings.TrimSpace(h)
	}

	dateCol := findColumn(headers, dateColumns)
	amountCol := findColumn(headers, amountColumns)
	debitCol := findColumn(headers, debitColumns)
	creditCol := findColumn(headers, creditColumns)
	descriptionCol := findColumn(headers, descriptionColumns)

	rows := []ParsedRow{}
	for index := 0; ; index++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("could not read line in CSV: %w", err)
		}

		raw := make(map[string]string, len(headers))
		for i, h := range headers {
			if i < len(record) {
				raw[h] = strings.TrimSpace(record[i])
			} else {
				raw[h] = ""
			}
		}

		row := ParsedRow{
			RowIndex:    index,
			Raw:         raw,
			ParseStatus: ParseStatusOK,
		}

		var errs []string

		if dateCol >= 0 {
			row.DateRaw = raw[headers[dateCol]]
		}
		if row.DateRaw != "" {
			date, ok := parseDate(row.DateRaw)
			if ok {
				row.DateChosen = date
			} else {
				errs = append(errs, fmt.Sprintf("could not parse date %q", row.DateRaw))
			}
		}

		resolveAmount(&row, raw, headers, amountCol, debitCol, creditCol, &errs)

		if descriptionCol >= 0 {
			row.DescriptionRaw = raw[headers[descriptionCol]]
			row.MerchantRaw = row.DescriptionRaw
			row.MerchantNorm = NormalizeMerchant(row.DescriptionRaw)
		}

		// Only flag the row when there was a value to parse and it could
		// not be parsed. Missing values are not errors, the classifier
		// handles rows without date or amount.
		if len(errs) > 0 {
			row.ParseStatus = ParseStatusError
			row.ParseError = strings.Join(errs, "; ")
		}

		rows = append(rows, row)
	}

	return rows, headers, nil
}

// resolveAmount derives the signed amount from either a single amount column
// or separate debit/credit columns.
//
// With debit/credit columns the rule order is fixed: debit-if-positive makes
// a negative signed amount, else credit-if-positive makes a positive one,
// else whichever of the two parsed is used as-is.
func resolveAmount(row *ParsedRow, raw map[string]string, headers []string, amountCol, debitCol, creditCol int, errs *[]string) {
	if amountCol >= 0 {
		row.AmountRaw = raw[headers[amountCol]]
		if row.AmountRaw == "" {
			return
		}

		amount, ok := parseAmount(row.AmountRaw)
		if !ok {
			*errs = append(*errs, fmt.Sprintf("could not parse amount %q", row.AmountRaw))
			return
		}

		row.Amount = &amount
		return
	}

	if debitCol < 0 && creditCol < 0 {
		return
	}

	var debitRaw, creditRaw string
	if debitCol >= 0 {
		debitRaw = raw[headers[debitCol]]
	}
	if creditCol >= 0 {
		creditRaw = raw[headers[creditCol]]
	}

	// Keep the original text of whichever column carried the value
	if debitRaw != "" {
		row.AmountRaw = debitRaw
	} else {
		row.AmountRaw = creditRaw
	}
	if row.AmountRaw == "" {
		return
	}

	var debit, credit *decimal.Decimal
	if debitRaw != "" {
		amount, ok := parseAmount(debitRaw)
		if !ok {
			*errs = append(*errs, fmt.Sprintf("could not parse debit %q", debitRaw))
		} else {
			debit = &amount
		}
	}
	if creditRaw != "" {
		amount, ok := parseAmount(creditRaw)
		if !ok {
			*errs = append(*errs, fmt.Sprintf("could not parse credit %q", creditRaw))
		} else {
			credit = &amount
		}
	}

	switch {
	case debit != nil && debit.IsPositive():
		negated := debit.Neg()
		row.Amount = &negated
	case credit != nil && credit.IsPositive():
		row.Amount = credit
	case debit != nil:
		row.Amount = debit
	case credit != nil:
		row.Amount = credit
	}
}

// findColumn returns the index of the best-matching header for a prioritized
// candidate list. Matching is a case-insensitive exact comparison, the first
// candidate with a match wins. Returns -1 when no candidate matches.
func findColumn(headers []string, candidates []string) int {
	for _, candidate := range candidates {
		for i, header := range headers {
			if strings.EqualFold(header, candidate) {
				return i
			}
		}
	}

	return -1
}
