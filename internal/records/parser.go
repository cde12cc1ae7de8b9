// Package records implements CSV ingestion for sales data: parsing raw text
// into candidate records and validating candidates into typed sales items.
package records

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"
)

// Candidate is a loosely-typed sales record read from one CSV row.
// Numeric fields are coerced to 0 and text fields to "" when the source
// value is missing or unparseable.
type Candidate struct {
	ProductID   string
	ProductName string
	Quantity    float64
	Price       float64
}

// Parse converts raw CSV text into candidate records, one per data row in
// row order. Columns are matched by header name (product_id, product_name,
// quantity, price) independent of position. Parse never fails: malformed
// rows are skipped and a missing or unreadable header yields no records.
func Parse(text string) []Candidate {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return []Candidate{}
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}

	candidates := make([]Candidate, 0)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// formatting noise never fails the pipeline
			continue
		}

		candidates = append(candidates, Candidate{
			ProductID:   field(row, columns, "product_id"),
			ProductName: field(row, columns, "product_name"),
			Quantity:    number(field(row, columns, "quantity")),
			Price:       number(field(row, columns, "price")),
		})
	}

	return candidates
}

func field(row []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func number(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
