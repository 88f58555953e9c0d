package merge

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/resumefire/backend/go-services/internal/resume"
)

// Candidate is a document proposed by the generator. It is untrusted and
// possibly partial: a nil content field means the generator did not return
// that section. Identity, version and layout fields are decoded only so
// they can be discarded by Merge.
type Candidate struct {
	VersionID    *string              `json:"versionId,omitempty"`
	UserID       *string              `json:"userId,omitempty"`
	Username     *string              `json:"username,omitempty"`
	TemplateID   *string              `json:"templateId,omitempty"`
	IsPublished  *bool                `json:"isPublished,omitempty"`
	PersonalInfo *resume.PersonalInfo `json:"personalInfo,omitempty"`
	SectionOrder []resume.SectionKey  `json:"sectionOrder,omitempty"`

	Summary    *string              `json:"summary,omitempty"`
	Experience *[]resume.Experience `json:"experience,omitempty"`
	Projects   *[]resume.Project    `json:"projects,omitempty"`
	Education  *[]resume.Education  `json:"education,omitempty"`
	Skills     *[]string            `json:"skills,omitempty"`
}

// DecodeCandidate parses raw generator output. Anything that is not a JSON
// object of the document shape fails with resume.ErrMalformedCandidate.
func DecodeCandidate(raw []byte) (*Candidate, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, fmt.Errorf("%w: expected a JSON object", resume.ErrMalformedCandidate)
	}
	var c Candidate
	dec := json.NewDecoder(bytes.NewReader(raw))
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("%w: %v", resume.ErrMalformedCandidate, err)
	}
	if dec.More() {
		return nil, fmt.Errorf("%w: trailing data after document", resume.ErrMalformedCandidate)
	}
	return &c, nil
}
