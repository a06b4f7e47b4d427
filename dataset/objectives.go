package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ObjectiveColumns are the header names recognized as the objective column,
// in order of preference.
var ObjectiveColumns = []string{"Objective", "objective", "LO", "lo", "Objectives"}

// ReadObjectives loads objectives from path. CSV and TSV files are read by
// header; any other file is read one objective per line. Blank entries are
// dropped and input order is kept.
func ReadObjectives(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open objectives: %w", err)
	}
	defer f.Close()

	var objectives []string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		objectives, err = ParseObjectives(f, ',')
	case ".tsv":
		objectives, err = ParseObjectives(f, '\t')
	default:
		objectives, err = ParseObjectiveLines(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return objectives, nil
}

// ParseObjectives reads a delimited table and returns the objective column.
func ParseObjectives(r io.Reader, comma rune) ([]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrNoObjectives
	}
	if err != nil {
		return nil, err
	}
	col := objectiveColumn(header)
	if col < 0 {
		return nil, ErrNoObjectiveColumn
	}

	var out []string
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if col >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[col]); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, ErrNoObjectives
	}
	return out, nil
}

// ParseObjectiveLines returns each non-blank line of r.
func ParseObjectiveLines(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if v := strings.TrimSpace(scanner.Text()); v != "" {
			out = append(out, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, ErrNoObjectives
	}
	return out, nil
}

func objectiveColumn(header []string) int {
	cleaned := make([]string, len(header))
	for i, h := range header {
		cleaned[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	for _, name := range ObjectiveColumns {
		if i := slices.Index(cleaned, name); i >= 0 {
			return i
		}
	}
	return -1
}
