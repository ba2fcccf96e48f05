package core

import (
	"errors"
	"math"
	"time"
)

// ErrNoValidData is returned when a batch produces no usable part records.
// It is distinct from a successful batch: callers show an explicit
// "no valid data" outcome rather than an empty summary.
var ErrNoValidData = errors.New("no valid data found")

// ErrNoFiles is wrapped into ErrNoValidData for a batch without any files.
var ErrNoFiles = errors.New("no file provided")

// Aggregate builds one ProgramSummary per distinct program, in the order
// programs are first seen. Records without a Part Name are discarded.
// Quantities that do not parse count as 0. now stamps the summary date.
//
// Returns ErrNoValidData when no record survives.
func Aggregate(records []PartRecord, now time.Time) ([]ProgramSummary, error) {
	type group struct {
		summary   ProgramSummary
		weights   int
		qtyNested float64
	}

	date := now.Format(DateLayout)
	index := make(map[string]int)
	var groups []*group

	for _, rec := range records {
		if !rec.PartName().Valid {
			continue
		}

		i, seen := index[rec.Program]
		if !seen {
			i = len(groups)
			index[rec.Program] = i
			groups = append(groups, &group{
				summary: ProgramSummary{
					Program:        rec.Program,
					FramesPerKit:   rec.Kit.Or(0),
					NumberOfTables: rec.PageCount,
					Date:           date,
				},
			})
		}

		g := groups[i]
		g.weights += ClassifyPart(rec.Description())
		g.qtyNested += ToNumberOrZero(rec.PartRow[ColQtyNested])
	}

	if len(groups) == 0 {
		return nil, ErrNoValidData
	}

	summaries := make([]ProgramSummary, len(groups))
	for i, g := range groups {
		g.summary.DifferentParts = g.weights
		g.summary.TotalParts = partCount(g.qtyNested)
		summaries[i] = g.summary
	}

	return summaries, nil
}

// partCount truncates a summed quantity to an int, saturating at the int
// range so huge sums never wrap.
func partCount(qty float64) int {
	switch {
	case math.IsNaN(qty):
		return 0
	case qty >= math.MaxInt:
		return math.MaxInt
	case qty <= math.MinInt:
		return math.MinInt
	}
	return int(qty)
}
