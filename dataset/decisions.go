package dataset

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/poiesic/lomatch/core"
)

// DecisionHeader is the column layout written by WriteDecisions.
var DecisionHeader = []string{
	"session_id", "seq", "objective", "decision", "source",
	"note_id", "combined", "fuzzy", "emb", "reason", "created_at",
}

// WriteDecisions writes rows as CSV with a header. Scores are rounded to
// three decimals; skipped rows leave the note and score columns blank.
func WriteDecisions(w io.Writer, rows []*core.DecisionRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(DecisionHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.SessionID,
			strconv.FormatUint(r.Seq, 10),
			r.Query,
			r.Decision,
			r.Source,
			"", "", "", "",
			r.Reason,
			"",
		}
		if r.Decision == core.DecisionAccepted {
			record[5] = strconv.FormatInt(r.CandidateID, 10)
			record[6] = score(r.Combined)
			record[7] = score(r.Lexical)
			record[8] = score(r.Semantic)
		}
		if !r.CreatedAt.IsZero() {
			record[10] = r.CreatedAt.UTC().Format(time.RFC3339)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func score(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}
