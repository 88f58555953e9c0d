package resume

import "fmt"

// SectionKey names one of the fixed content sections of a document.
type SectionKey string

const (
	SectionSummary    SectionKey = "summary"
	SectionExperience SectionKey = "experience"
	SectionProjects   SectionKey = "projects"
	SectionEducation  SectionKey = "education"
	SectionSkills     SectionKey = "skills"
)

var canonicalOrder = [...]SectionKey{
	SectionSummary,
	SectionExperience,
	SectionProjects,
	SectionEducation,
	SectionSkills,
}

// DefaultOrder returns a fresh copy of the canonical section order.
func DefaultOrder() []SectionKey {
	out := make([]SectionKey, len(canonicalOrder))
	copy(out, canonicalOrder[:])
	return out
}

// Valid reports whether k is one of the fixed section keys.
func (k SectionKey) Valid() bool {
	for _, c := range canonicalOrder {
		if c == k {
			return true
		}
	}
	return false
}

// ParseSectionKey converts s into a SectionKey, rejecting unknown names.
func ParseSectionKey(s string) (SectionKey, error) {
	k := SectionKey(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown section %q", s)
	}
	return k, nil
}

// SectionSet is a set of section keys, used for the protected keys of a merge.
type SectionSet map[SectionKey]struct{}

func NewSectionSet(keys ...SectionKey) SectionSet {
	s := make(SectionSet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func (s SectionSet) Has(k SectionKey) bool {
	_, ok := s[k]
	return ok
}

// Keys returns the members in canonical order.
func (s SectionSet) Keys() []SectionKey {
	out := make([]SectionKey, 0, len(s))
	for _, k := range canonicalOrder {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// Direction is the way MoveSection shifts an entry.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// MoveSection swaps order[index] with its neighbour in the given direction.
// Out-of-range moves (first up, last down, bad index or direction) return
// the input unchanged. The input slice is never modified.
func MoveSection(order []SectionKey, index int, dir Direction) []SectionKey {
	var target int
	switch dir {
	case Up:
		target = index - 1
	case Down:
		target = index + 1
	default:
		return order
	}
	if index < 0 || index >= len(order) || target < 0 || target >= len(order) {
		return order
	}
	out := append([]SectionKey(nil), order...)
	out[index], out[target] = out[target], out[index]
	return out
}
