package products

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/schmidtgroupe/reservation-portal/internal/types"
)

// csvHeader is the canonical column order for catalog import/export files.
var csvHeader = []string{
	"reference", "name", "description", "category", "brand",
	"image_url", "stock_quantity", "max_per_store", "active",
}

// ParseCSV reads a catalog import file. The first row must be the header;
// column order is fixed. Quantities must be non-negative integers and the
// active column accepts true/false/1/0.
func ParseCSV(r io.Reader) ([]ImportRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(header))
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(col), csvHeader[i]) {
			return nil, fmt.Errorf("unexpected column %q at position %d, want %q", col, i+1, csvHeader[i])
		}
	}

	var rows []ImportRow
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row, err := parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRecord(record []string) (ImportRow, error) {
	var row ImportRow
	row.Reference = strings.TrimSpace(record[0])
	row.Name = strings.TrimSpace(record[1])
	row.Description = record[2]
	row.Category = strings.TrimSpace(record[3])
	row.Brand = strings.TrimSpace(record[4])
	row.ImageURL = strings.TrimSpace(record[5])

	if row.Reference == "" {
		return row, fmt.Errorf("reference must not be empty")
	}
	if row.Name == "" {
		return row, fmt.Errorf("name must not be empty")
	}

	stock, err := strconv.Atoi(strings.TrimSpace(record[6]))
	if err != nil || stock < 0 {
		return row, fmt.Errorf("invalid stock_quantity %q", record[6])
	}
	row.StockQuantity = stock

	maxPerStore, err := strconv.Atoi(strings.TrimSpace(record[7]))
	if err != nil || maxPerStore < 0 {
		return row, fmt.Errorf("invalid max_per_store %q", record[7])
	}
	row.MaxPerStore = maxPerStore

	active, err := strconv.ParseBool(strings.TrimSpace(record[8]))
	if err != nil {
		return row, fmt.Errorf("invalid active flag %q", record[8])
	}
	row.Active = active

	return row, nil
}

// WriteCSV streams the catalog in the import file format, so an export can be
// re-imported unchanged.
func WriteCSV(w io.Writer, catalog []types.Product) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, p := range catalog {
		record := []string{
			p.Reference, p.Name, p.Description, p.Category, p.Brand,
			p.ImageURL, strconv.Itoa(p.StockQuantity), strconv.Itoa(p.MaxPerStore),
			strconv.FormatBool(p.Active),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("writing CSV record %q: %w", p.Reference, err)
		}
	}
	writer.Flush()
	return writer.Error()
}
