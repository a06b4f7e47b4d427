package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/poiesic/lomatch/core"
)

// ReadCandidates loads a candidate pool from a CSV file. See ParseCandidates.
func ReadCandidates(path string) ([]core.Candidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open candidates: %w", err)
	}
	defer f.Close()
	return ParseCandidates(f)
}

// ParseCandidates reads a candidate pool. The header must contain an "id"
// or "noteId" column. "category" or "modelName" sets the category and
// "labels" or "tags" holds space-separated labels. Every other column is a
// note field, in header order.
func ParseCandidates(r io.Reader) ([]core.Candidate, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, core.ErrEmptyPool
	}
	if err != nil {
		return nil, err
	}

	idCol, catCol, labelCol := -1, -1, -1
	var fieldCols []int
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		header[i] = h
		switch strings.ToLower(h) {
		case "id", "noteid", "note_id":
			idCol = i
		case "category", "modelname", "model":
			catCol = i
		case "labels", "tags":
			labelCol = i
		default:
			fieldCols = append(fieldCols, i)
		}
	}
	if idCol < 0 {
		return nil, ErrNoIDColumn
	}

	var pool []core.Candidate
	seen := make(map[int64]struct{})
	line := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		id, err := strconv.ParseInt(strings.TrimSpace(cell(row, idCol)), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidRow, line, err)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %d on line %d", core.ErrDuplicateCandidate, id, line)
		}
		seen[id] = struct{}{}

		fields := make([]core.Field, 0, len(fieldCols))
		for _, col := range fieldCols {
			fields = append(fields, core.Field{Name: header[col], Value: cell(row, col)})
		}
		c := core.NewCandidate(id, strings.TrimSpace(cell(row, catCol)), strings.Fields(cell(row, labelCol)), fields)
		if err := core.ValidateCandidate(&c); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		pool = append(pool, c)
	}
	if len(pool) == 0 {
		return nil, core.ErrEmptyPool
	}
	return pool, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}
