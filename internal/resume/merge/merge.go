// Package merge folds an untrusted generator candidate back over the
// original document. It is the single place deciding which fields a
// generator may change.
package merge

import (
	"github.com/resumefire/backend/go-services/internal/resume"
)

// Merge builds the replacement document for original from candidate.
//
// Content sections come from the candidate unless they are protected or
// absent from it, in which case the original's value is kept whole. The
// version, identity, template, publication, personal-info and section-order
// fields always come from original. The result is sanitized.
//
// A section the candidate leaves out is never cleared; a nil candidate
// yields the sanitized original.
func Merge(original resume.Document, candidate *Candidate, protected resume.SectionSet) resume.Document {
	out := original.Clone()
	if candidate == nil {
		return resume.Sanitize(out)
	}

	if candidate.Summary != nil && !protected.Has(resume.SectionSummary) {
		out.Summary = *candidate.Summary
	}
	if candidate.Experience != nil && !protected.Has(resume.SectionExperience) {
		out.Experience = append([]resume.Experience{}, (*candidate.Experience)...)
	}
	if candidate.Projects != nil && !protected.Has(resume.SectionProjects) {
		out.Projects = append([]resume.Project{}, (*candidate.Projects)...)
	}
	if candidate.Education != nil && !protected.Has(resume.SectionEducation) {
		out.Education = append([]resume.Education{}, (*candidate.Education)...)
	}
	if candidate.Skills != nil && !protected.Has(resume.SectionSkills) {
		out.Skills = append([]string{}, (*candidate.Skills)...)
	}

	return resume.Sanitize(out)
}

// MergeRaw decodes raw generator output and merges it. On decode failure
// nothing is merged and resume.ErrMalformedCandidate is returned.
func MergeRaw(original resume.Document, raw []byte, protected resume.SectionSet) (resume.Document, error) {
	c, err := DecodeCandidate(raw)
	if err != nil {
		return resume.Document{}, err
	}
	return Merge(original, c, protected), nil
}
