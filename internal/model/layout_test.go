package model

import (
	"reflect"
	"testing"
)

func TestBuildLayoutPagination(t *testing.T) {
	l := BuildLayout([]int{1, 2, 3, 4, 5}, 2)

	want := [][]int{{1, 2}, {3, 4}, {5}}
	if got := l.Pages(); !reflect.DeepEqual(got, want) {
		t.Fatalf("pages: want %v, got %v", want, got)
	}
	if got := l.Slots(); !reflect.DeepEqual(got, []int{1, 2, 3, 4, 5}) {
		t.Fatalf("slots: got %v", got)
	}
}

func TestBuildLayoutSinglePage(t *testing.T) {
	l := BuildLayout([]int{1, 2, 3}, 0)
	if got := l.Pages(); len(got) != 1 || !reflect.DeepEqual(got[0], []int{1, 2, 3}) {
		t.Fatalf("perPage 0 puts everything on one page: got %v", got)
	}
}

func TestRemoveSlotCleansBreaks(t *testing.T) {
	// One question per page; removing the middle slot must not leave two
	// adjacent page breaks behind.
	l := BuildLayout([]int{1, 2, 3}, 1)
	l = l.RemoveSlot(2)

	if got := l.Slots(); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Fatalf("slots after removal: got %v", got)
	}
	for i := 1; i < len(l); i++ {
		if l[i].PageBreak && l[i-1].PageBreak {
			t.Fatal("adjacent page breaks left after removal")
		}
	}
}

func TestRemoveLastSlotTrimsTrailingBreak(t *testing.T) {
	l := BuildLayout([]int{1, 2}, 1)
	l = l.RemoveSlot(2)

	if len(l) == 0 || l[len(l)-1].PageBreak {
		t.Fatalf("trailing page break not trimmed: %v", l)
	}
	if got := l.Slots(); !reflect.DeepEqual(got, []int{1}) {
		t.Fatalf("slots: got %v", got)
	}
}

func TestCleanDropsUnknownSlots(t *testing.T) {
	l := QuizLayout{
		{PageBreak: true}, // leading break
		{Slot: 1},
		{Slot: 99}, // no longer a valid slot
		{PageBreak: true},
		{PageBreak: true}, // duplicate
		{Slot: 2},
		{PageBreak: true}, // trailing break
	}
	l = l.Clean(map[int]bool{1: true, 2: true})

	if got := l.Slots(); !reflect.DeepEqual(got, []int{1, 2}) {
		t.Fatalf("slots: got %v", got)
	}
	if l[0].PageBreak || l[len(l)-1].PageBreak {
		t.Fatalf("leading/trailing breaks survive Clean: %v", l)
	}
}

func TestRepaginate(t *testing.T) {
	l := BuildLayout([]int{1, 2, 3, 4, 5, 6}, 1)
	l = l.Repaginate(3)

	want := [][]int{{1, 2, 3}, {4, 5, 6}}
	if got := l.Pages(); !reflect.DeepEqual(got, want) {
		t.Fatalf("repaginated pages: want %v, got %v", want, got)
	}
}

func TestLayoutScanRoundTrip(t *testing.T) {
	l := BuildLayout([]int{3, 1, 2}, 2)
	v, err := l.Value()
	if err != nil {
		t.Fatal(err)
	}

	var back QuizLayout
	if err := back.Scan(v); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back.Pages(), l.Pages()) {
		t.Fatalf("round trip: want %v, got %v", l.Pages(), back.Pages())
	}

	// A NULL column scans to an empty layout, not an error.
	var empty QuizLayout
	if err := empty.Scan(nil); err != nil {
		t.Fatal(err)
	}
	if len(empty) != 0 {
		t.Fatalf("nil scans to empty: %v", empty)
	}
}

func TestLayoutValidate(t *testing.T) {
	good := BuildLayout([]int{1, 2}, 1)
	if err := good.Validate(); err != nil {
		t.Fatal(err)
	}
	bad := QuizLayout{{Slot: 1, PageBreak: true}}
	if err := bad.Validate(); err == nil {
		t.Fatal("slot+break item should be rejected")
	}
}
