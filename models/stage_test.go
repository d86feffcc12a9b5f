// ABOUTME: Tests for the stage taxonomy and deal patches
// ABOUTME: Covers ordering, lookup, and merge semantics of DealPatch
package models

import (
	"reflect"
	"testing"
	"time"
)

func TestStagesOrder(t *testing.T) {
	want := []string{"lead", "qualified", "proposal", "negotiation", "closed-won", "closed-lost"}
	if got := StageIDs(); !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	for i, id := range want {
		if StageIndex(id) != i {
			t.Errorf("expected index %d for %s, got %d", i, id, StageIndex(id))
		}
	}
	if StageIndex("archived") != -1 {
		t.Error("expected -1 for unknown stage")
	}
}

func TestStagesReturnsCopy(t *testing.T) {
	s := Stages()
	s[0].Name = "Mutated"

	if Stages()[0].Name != "Lead" {
		t.Error("taxonomy was mutated through the returned slice")
	}
}

func TestLookupStage(t *testing.T) {
	s, ok := LookupStage(StageClosedWon)
	if !ok {
		t.Fatal("expected closed-won to exist")
	}
	if s.Name != "Closed Won" || s.Color != "green" || !s.Closed() {
		t.Errorf("unexpected stage %+v", s)
	}

	if IsValidStage("closed_won") {
		t.Error("underscore key should not be a valid stage")
	}
}

func TestDealPatchApplyMerges(t *testing.T) {
	contact := int64(4)
	closeDate := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	d := Deal{
		ID:                1,
		Title:             "Website redesign",
		Value:             1000,
		Stage:             StageLead,
		Probability:       20,
		ContactID:         &contact,
		ExpectedCloseDate: &closeDate,
		Description:       "phase one",
		CreatedAt:         closeDate.AddDate(0, -1, 0),
	}

	got := StagePatch(StageQualified).Apply(d)

	want := d
	want.Stage = StageQualified
	if !reflect.DeepEqual(got, want) {
		t.Errorf("stage patch changed more than the stage:\n got %+v\nwant %+v", got, want)
	}
	if d.Stage != StageLead {
		t.Error("Apply mutated the original deal")
	}
}

func TestDealPatchClearFields(t *testing.T) {
	contact := int64(4)
	d := Deal{ID: 1, Title: "x", Stage: StageLead, ContactID: &contact}

	got := DealPatch{ClearContact: true}.Apply(d)
	if got.ContactID != nil {
		t.Error("expected contact to be cleared")
	}
}

func TestDealPatchFields(t *testing.T) {
	if got := StagePatch(StageProposal).Fields(); !reflect.DeepEqual(got, []string{"stage"}) {
		t.Errorf("expected only stage, got %v", got)
	}
	if !(DealPatch{}).IsEmpty() {
		t.Error("expected empty patch")
	}

	title, value, stage, probability, description := "x", 1.0, StageLead, 0, ""
	contact := int64(1)
	full := DealPatch{
		Title:          &title,
		Value:          &value,
		Stage:          &stage,
		Probability:    &probability,
		ContactID:      &contact,
		ClearCloseDate: true,
		Description:    &description,
	}
	if len(full.Fields()) != 7 {
		t.Errorf("expected every field, got %v", full.Fields())
	}
}
