package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
)

// LayoutItem is one entry of an attempt layout: either a question slot or a
// page break, never both.
type LayoutItem struct {
	Slot      int  `json:"slot,omitempty"`
	PageBreak bool `json:"pageBreak,omitempty"`
}

// QuizLayout is the ordered question layout of an attempt. Stored as JSON.
type QuizLayout []LayoutItem

func (l QuizLayout) Value() (driver.Value, error) {
	if l == nil {
		l = QuizLayout{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *QuizLayout) Scan(value interface{}) error {
	if value == nil {
		*l = QuizLayout{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into QuizLayout", value)
	}
	if len(data) == 0 {
		*l = QuizLayout{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Slots returns the slot numbers in layout order, skipping page breaks.
func (l QuizLayout) Slots() []int {
	var slots []int
	for _, it := range l {
		if !it.PageBreak {
			slots = append(slots, it.Slot)
		}
	}
	return slots
}

// Pages splits the layout into pages of slot numbers. Consecutive page breaks
// do not produce empty pages.
func (l QuizLayout) Pages() [][]int {
	var pages [][]int
	var current []int
	for _, it := range l {
		if it.PageBreak {
			if len(current) > 0 {
				pages = append(pages, current)
				current = nil
			}
			continue
		}
		current = append(current, it.Slot)
	}
	if len(current) > 0 {
		pages = append(pages, current)
	}
	return pages
}

// AddSlot appends a question slot to the last page.
func (l QuizLayout) AddSlot(slot int) QuizLayout {
	return append(l, LayoutItem{Slot: slot})
}

// RemoveSlot drops every occurrence of slot, then cleans up any page breaks
// left dangling by the removal.
func (l QuizLayout) RemoveSlot(slot int) QuizLayout {
	out := make(QuizLayout, 0, len(l))
	for _, it := range l {
		if !it.PageBreak && it.Slot == slot {
			continue
		}
		out = append(out, it)
	}
	return out.Clean(nil)
}

// Clean removes leading/trailing/duplicate page breaks, and, when validSlots
// is non-nil, any slot not present in it.
func (l QuizLayout) Clean(validSlots map[int]bool) QuizLayout {
	out := make(QuizLayout, 0, len(l))
	for _, it := range l {
		if it.PageBreak {
			if len(out) == 0 || out[len(out)-1].PageBreak {
				continue
			}
			out = append(out, it)
			continue
		}
		if validSlots != nil && !validSlots[it.Slot] {
			continue
		}
		out = append(out, it)
	}
	for len(out) > 0 && out[len(out)-1].PageBreak {
		out = out[:len(out)-1]
	}
	return out
}

// Repaginate rebuilds the page-break structure so that each page holds at
// most perPage questions. perPage 0 puts everything on one page.
func (l QuizLayout) Repaginate(perPage int) QuizLayout {
	slots := l.Slots()
	out := make(QuizLayout, 0, len(slots)+len(slots)/max(perPage, 1))
	for i, s := range slots {
		if perPage > 0 && i > 0 && i%perPage == 0 {
			out = append(out, LayoutItem{PageBreak: true})
		}
		out = append(out, LayoutItem{Slot: s})
	}
	return out
}

// BuildLayout constructs a fresh layout from an ordered slot list, paginated
// perPage questions to a page.
func BuildLayout(slots []int, perPage int) QuizLayout {
	l := make(QuizLayout, 0, len(slots))
	for _, s := range slots {
		l = append(l, LayoutItem{Slot: s})
	}
	return l.Repaginate(perPage)
}

// Validate rejects layouts with page-break items carrying a slot number.
func (l QuizLayout) Validate() error {
	for _, it := range l {
		if it.PageBreak && it.Slot != 0 {
			return errors.New("layout item cannot be both slot and page break")
		}
	}
	return nil
}
