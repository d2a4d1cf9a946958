package inventory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Columns are positional: name, quantity, volume per unit (ml), cost per unit.
const Columns = 4

// ErrMalformedInventory is matched by every *MalformedError.
var ErrMalformedInventory = errors.New("malformed inventory")

// MalformedError reports the first row that failed validation. Row is 1-based and counts
// the header row when one is present; 0 means the table as a whole.
type MalformedError struct {
	Row    int
	Column string
	Reason string
}

func (e *MalformedError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("malformed inventory: %s", e.Reason)
	}
	if e.Column == "" {
		return fmt.Sprintf("malformed inventory: row %d: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("malformed inventory: row %d, %s: %s", e.Row, e.Column, e.Reason)
}

func (e *MalformedError) Is(target error) bool { return target == ErrMalformedInventory }

var columnNames = [Columns]string{"name", "quantity", "volume_ml", "cost_per_unit"}

// Ingest validates rows and builds an Inventory. The first row is treated as a header
// when none of its numeric cells parse as a number.
func Ingest(rows [][]string) (Inventory, error) {
	start := 0
	if len(rows) > 0 && isHeader(rows[0]) {
		start = 1
	}
	if len(rows)-start == 0 {
		return Inventory{}, &MalformedError{Reason: "no inventory rows"}
	}

	seen := map[string]int{}
	items := make([]Item, 0, len(rows)-start)
	for i := start; i < len(rows); i++ {
		row, line := rows[i], i+1
		if len(row) != Columns {
			return Inventory{}, &MalformedError{Row: line, Reason: fmt.Sprintf("expected %d columns, got %d", Columns, len(row))}
		}

		name := strings.TrimSpace(row[0])
		if name == "" {
			return Inventory{}, &MalformedError{Row: line, Column: columnNames[0], Reason: "empty name"}
		}
		if prev, dup := seen[matchKey(name)]; dup {
			return Inventory{}, &MalformedError{Row: line, Column: columnNames[0], Reason: fmt.Sprintf("duplicate of row %d", prev)}
		}
		seen[matchKey(name)] = line

		var nums [Columns - 1]float64
		for c := 1; c < Columns; c++ {
			v, err := parseNumber(row[c])
			if err != nil {
				return Inventory{}, &MalformedError{Row: line, Column: columnNames[c], Reason: err.Error()}
			}
			nums[c-1] = v
		}
		if nums[1] <= 0 {
			return Inventory{}, &MalformedError{Row: line, Column: columnNames[2], Reason: "must be greater than zero"}
		}

		items = append(items, NewItem(name, nums[0], nums[1], nums[2]))
	}
	return Inventory{Items: items}, nil
}

func isHeader(row []string) bool {
	if len(row) != Columns {
		return false
	}
	for _, cell := range row[1:] {
		if _, err := parseNumber(cell); err == nil {
			return false
		}
	}
	return true
}

// IngestCSV reads a CSV table and passes it to Ingest.
func IngestCSV(r io.Reader) (Inventory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return Inventory{}, &MalformedError{Reason: err.Error()}
	}
	return Ingest(rows)
}

// parseNumber accepts non-negative numbers, tolerating a leading '$' and thousands commas.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, errors.New("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if v < 0 {
		return 0, fmt.Errorf("negative value %v", v)
	}
	return v, nil
}
