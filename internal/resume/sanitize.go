package resume

import (
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func documentValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the structural invariants of d: every content list item
// carries a non-empty identifier unique within its list, and the section
// order is a permutation of the fixed section keys.
func Validate(d Document) error {
	if err := documentValidator().Struct(d); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return nil
}

// IsStructurallyValid is Validate as a predicate.
func IsStructurallyValid(d Document) bool {
	return Validate(d) == nil
}

// Sanitize repairs recoverable structural gaps and returns the result. It
// never drops user content: nil lists become empty, missing or duplicated
// item identifiers are replaced with fresh ones, and the section order keeps
// the first occurrence of each known key with missing keys appended in
// canonical order. Sanitize(Sanitize(d)) equals Sanitize(d).
func Sanitize(d Document) Document {
	out := d.Clone()
	if out.TemplateID == "" {
		out.TemplateID = DefaultTemplateID
	}
	if out.Skills == nil {
		out.Skills = []string{}
	}

	seen := map[string]bool{}
	fix := func(id string) string {
		if id == "" || seen[id] {
			id = uuid.NewString()
		}
		seen[id] = true
		return id
	}
	if out.Experience == nil {
		out.Experience = []Experience{}
	}
	for i := range out.Experience {
		out.Experience[i].ID = fix(out.Experience[i].ID)
	}
	seen = map[string]bool{}
	if out.Projects == nil {
		out.Projects = []Project{}
	}
	for i := range out.Projects {
		out.Projects[i].ID = fix(out.Projects[i].ID)
	}
	seen = map[string]bool{}
	if out.Education == nil {
		out.Education = []Education{}
	}
	for i := range out.Education {
		out.Education[i].ID = fix(out.Education[i].ID)
	}

	out.SectionOrder = SanitizeOrder(out.SectionOrder)
	return out
}

// SanitizeOrder returns a permutation of the fixed section keys that keeps
// the relative order of the valid keys already present.
func SanitizeOrder(order []SectionKey) []SectionKey {
	out := make([]SectionKey, 0, len(canonicalOrder))
	present := make(map[SectionKey]bool, len(canonicalOrder))
	for _, k := range order {
		if !k.Valid() || present[k] {
			continue
		}
		present[k] = true
		out = append(out, k)
	}
	for _, k := range canonicalOrder {
		if !present[k] {
			out = append(out, k)
		}
	}
	return out
}
