package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

var fixedNow = time.Date(2025, time.March, 7, 15, 4, 5, 0, time.UTC)

func record(program, name, qtyNested, desc string, kit float64, pages int) PartRecord {
	var row PartRow
	row[ColPartID] = TextCell("1")
	if name != "" {
		row[ColPartName] = TextCell(name)
	}
	row[ColQtyNested] = TextCell(qtyNested)
	row[ColPartDescription] = TextCell(desc)
	return PartRecord{
		PartRow:   row,
		Program:   program,
		Kit:       Number{Value: kit, Valid: true},
		PageCount: pages,
	}
}

func TestAggregate_GroupsInFirstSeenOrder(t *testing.T) {
	records := []PartRecord{
		record("B", "p1", "4", "Leg Rail", 2, 3),
		record("A", "p2", "1", "RELIEF", 1, 1),
		record("B", "p3", "2", "L Side / R Side", 2, 3),
		record("A", "p4", "5", "Top", 1, 1),
	}

	got, err := Aggregate(records, fixedNow)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}

	want := []ProgramSummary{
		{Program: "B", DifferentParts: 3, TotalParts: 6, FramesPerKit: 2, NumberOfTables: 3, Date: "03/07/2025"},
		{Program: "A", DifferentParts: 1, TotalParts: 6, FramesPerKit: 1, NumberOfTables: 1, Date: "03/07/2025"},
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("summary[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAggregate_DifferentPartsIsWeightSum(t *testing.T) {
	descs := []string{"RELIEF", "L-Panel + R-Panel", "Leg Rail", "L End & R End", "Shelf", "relief cut"}

	var records []PartRecord
	wantWeights := 0
	for _, d := range descs {
		records = append(records, record("P", "part", "1", d, 1, 1))
		wantWeights += ClassifyDescription(d)
	}

	got, err := Aggregate(records, fixedNow)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if got[0].DifferentParts != wantWeights {
		t.Errorf("DifferentParts = %d, want %d", got[0].DifferentParts, wantWeights)
	}
}

func TestAggregate_NonNumericQtyCountsAsZero(t *testing.T) {
	records := []PartRecord{
		record("P", "a", "3", "x", 1, 1),
		record("P", "b", "n/a", "x", 1, 1),
		record("P", "c", "", "x", 1, 1),
		record("P", "d", "2.7", "x", 1, 1),
	}

	got, err := Aggregate(records, fixedNow)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	// 3 + 0 + 0 + 2.7 truncated
	if got[0].TotalParts != 5 {
		t.Errorf("TotalParts = %d, want 5", got[0].TotalParts)
	}
}

func TestAggregate_NonFiniteQtyCountsAsZero(t *testing.T) {
	for _, qty := range []string{"inf", "-inf", "Infinity", "1e400", "-1e400", "nan"} {
		t.Run(qty, func(t *testing.T) {
			records := []PartRecord{
				record("P", "a", qty, "x", 1, 1),
				record("P", "b", "4", "x", 1, 1),
			}

			got, err := Aggregate(records, fixedNow)
			if err != nil {
				t.Fatalf("Aggregate() error = %v", err)
			}
			if got[0].TotalParts != 4 {
				t.Errorf("TotalParts = %d, want 4", got[0].TotalParts)
			}
		})
	}
}

func TestAggregate_HugeQtySaturates(t *testing.T) {
	records := []PartRecord{
		record("P", "a", "1e300", "x", 1, 1),
		record("P", "b", "1e300", "x", 1, 1),
	}

	got, err := Aggregate(records, fixedNow)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if got[0].TotalParts != math.MaxInt {
		t.Errorf("TotalParts = %d, want %d", got[0].TotalParts, math.MaxInt)
	}
}

func TestAggregate_DropsRecordsWithoutPartName(t *testing.T) {
	records := []PartRecord{
		record("Ghost", "", "9", "x", 1, 1),
		record("Real", "a", "1", "x", 1, 1),
	}

	got, err := Aggregate(records, fixedNow)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if len(got) != 1 || got[0].Program != "Real" {
		t.Errorf("summaries = %+v, want only Real", got)
	}
}

func TestAggregate_MissingKitIsZero(t *testing.T) {
	rec := record("P", "a", "1", "x", 0, 2)
	rec.Kit = Number{}

	got, err := Aggregate([]PartRecord{rec}, fixedNow)
	if err != nil {
		t.Fatalf("Aggregate() error = %v", err)
	}
	if got[0].FramesPerKit != 0 {
		t.Errorf("FramesPerKit = %v, want 0", got[0].FramesPerKit)
	}
}

func TestAggregate_NoValidData(t *testing.T) {
	tests := []struct {
		name    string
		records []PartRecord
	}{
		{"nil input", nil},
		{"only nameless rows", []PartRecord{record("P", "", "1", "x", 1, 1)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Aggregate(tt.records, fixedNow)
			if !errors.Is(err, ErrNoValidData) {
				t.Errorf("error = %v, want ErrNoValidData", err)
			}
			if got != nil {
				t.Errorf("summaries = %+v, want nil", got)
			}
		})
	}
}
