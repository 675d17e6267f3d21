package transport

import (
	"encoding/json"
)

// Selection is a set of transport modes. The zero value is the empty set.
// Selections are values: comparing two with == compares their contents.
type Selection uint8

// NewSelection builds a selection containing the given modes. It does not
// apply the compatibility rules; use Toggle for user-driven changes.
func NewSelection(modes ...Mode) Selection {
	var s Selection
	for _, m := range modes {
		s = s.with(m)
	}
	return s
}

func (s Selection) Has(m Mode) bool {
	b := m.bit()
	return b != 0 && uint8(s)&b != 0
}

func (s Selection) with(m Mode) Selection    { return Selection(uint8(s) | m.bit()) }
func (s Selection) without(m Mode) Selection { return Selection(uint8(s) &^ m.bit()) }

func (s Selection) IsEmpty() bool { return s == 0 }

func (s Selection) Len() int {
	n := 0
	for _, m := range Modes {
		if s.Has(m) {
			n++
		}
	}
	return n
}

// Modes returns the selected modes in display order.
func (s Selection) Modes() []Mode {
	out := make([]Mode, 0, len(Modes))
	for _, m := range Modes {
		if s.Has(m) {
			out = append(out, m)
		}
	}
	return out
}

func (s Selection) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Modes())
}

func (s *Selection) UnmarshalJSON(b []byte) error {
	var names []string
	if err := json.Unmarshal(b, &names); err != nil {
		return err
	}
	sel, err := ParseSelection(names)
	if err != nil {
		return err
	}
	*s = sel
	return nil
}

// ParseSelection parses mode names into a selection. Duplicates collapse.
func ParseSelection(names []string) (Selection, error) {
	var s Selection
	for _, n := range names {
		m, err := ParseMode(n)
		if err != nil {
			return 0, err
		}
		s = s.with(m)
	}
	return s, nil
}

// Toggle applies a single user toggle of mode m to the selection.
//
// Car travel is incompatible with bus and subway: adding either while the
// other side is selected is rejected and the selection is returned
// unchanged. Adding bus or subway also adds walking; removing walking also
// removes bus and subway. Each call yields exactly one outcome, cascades
// never compound.
func Toggle(s Selection, m Mode) Selection {
	if m.bit() == 0 {
		return s
	}

	if m.IsTransit() && s.Has(Car) && !s.Has(m) {
		return s
	}
	if m == Car && (s.Has(Bus) || s.Has(Subway)) && !s.Has(Car) {
		return s
	}

	switch m {
	case Bus, Subway:
		if s.Has(m) {
			return s.without(m)
		}
		return s.with(m).with(Walking)
	case Walking:
		if s.Has(Walking) {
			return s.without(Walking).without(Bus).without(Subway)
		}
		return s.with(Walking)
	}

	if s.Has(m) {
		return s.without(m)
	}
	return s.with(m)
}
