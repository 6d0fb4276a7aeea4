package repository

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// csvColumns is the header expected by ReadPlayersCSV.
var csvColumns = []string{"name", "max_health", "health", "gold", "armor", "attack", "agility", "arcane", "appeal"}

// ReadPlayersCSV parses player records from CSV with a header row. Rows that
// fail to parse are skipped and reported in the joined error.
func ReadPlayersCSV(r io.Reader) ([]*PlayerRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, col := range csvColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("csv header is missing column %q", col)
		}
	}

	var (
		records []*PlayerRecord
		errs    []error
		line    = 1
	)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", line, err))
			continue
		}
		rec, err := parseRow(row, index)
		if err != nil {
			errs = append(errs, fmt.Errorf("row %d: %w", line, err))
			continue
		}
		records = append(records, rec)
	}
	return records, errors.Join(errs...)
}

func parseRow(row []string, index map[string]int) (*PlayerRecord, error) {
	name := strings.TrimSpace(row[index["name"]])
	if name == "" {
		return nil, errors.New("name is required")
	}

	rec := &PlayerRecord{Name: name}
	ints := []struct {
		col string
		dst *int
	}{
		{"max_health", &rec.MaxHealth},
		{"health", &rec.Health},
		{"gold", &rec.Gold},
		{"armor", &rec.Armor},
		{"attack", &rec.Attack},
		{"agility", &rec.Agility},
		{"arcane", &rec.Arcane},
		{"appeal", &rec.Appeal},
	}
	for _, f := range ints {
		raw := strings.TrimSpace(row[index[f.col]])
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q", f.col, raw)
		}
		*f.dst = v
	}
	if rec.MaxHealth <= 0 {
		return nil, fmt.Errorf("max_health must be positive")
	}
	if rec.Health > rec.MaxHealth {
		rec.Health = rec.MaxHealth
	}
	return rec, nil
}
