package mend

import (
	"errors"
	"testing"
	"time"
)

func TestErrorRing_NilSafe(t *testing.T) {
	var r *errorRing

	// All operations should be safe on nil
	r.push(time.Now(), errors.New("test"))

	if r.all() != nil {
		t.Error("expected nil from nil ring")
	}
}

func TestErrorRing_ZeroSize(t *testing.T) {
	if r := newErrorRing(0); r != nil {
		t.Error("expected nil ring for size 0")
	}
	if r := newErrorRing(-1); r != nil {
		t.Error("expected nil ring for negative size")
	}
}

func TestErrorRing_Empty(t *testing.T) {
	r := newErrorRing(2)
	if r.all() != nil {
		t.Error("expected nil from empty ring")
	}
}

func TestErrorRing_KeepsTime(t *testing.T) {
	r := newErrorRing(3)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	r.push(at, errors.New("error1"))

	records := r.all()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if !records[0].Time.Equal(at) {
		t.Errorf("expected time %v, got %v", at, records[0].Time)
	}
	if records[0].Err.Error() != "error1" {
		t.Errorf("expected error1, got %v", records[0].Err)
	}
}

func TestErrorRing_WrapsAndEvictsOldest(t *testing.T) {
	r := newErrorRing(3)
	now := time.Now()

	for _, msg := range []string{"error1", "error2", "error3", "error4"} {
		r.push(now, errors.New(msg))
	}

	records := r.all()
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	// error1 should be gone, oldest is now error2
	for i, want := range []string{"error2", "error3", "error4"} {
		if records[i].Err.Error() != want {
			t.Errorf("record %d: expected %s, got %v", i, want, records[i].Err)
		}
	}
}

func TestErrorRing_MultipleWraps(t *testing.T) {
	r := newErrorRing(2)
	now := time.Now()

	for _, msg := range []string{"a", "b", "c", "d", "e"} {
		r.push(now, errors.New(msg))
	}

	records := r.all()
	if len(records) != 2 || records[0].Err.Error() != "d" || records[1].Err.Error() != "e" {
		t.Errorf("expected [d e], got %v", records)
	}
}
