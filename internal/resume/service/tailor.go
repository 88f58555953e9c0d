package service

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/resumefire/backend/go-services/internal/generator"
	"github.com/resumefire/backend/go-services/internal/resume"
	"github.com/resumefire/backend/go-services/internal/resume/merge"
	"github.com/resumefire/backend/go-services/pkg/logger"
	"github.com/resumefire/backend/go-services/pkg/metrics"
)

// Proposal is a merged generator result awaiting the user's decision.
// Nothing is stored until it is committed.
type Proposal struct {
	Original resume.Document     `json:"original"`
	Proposed resume.Document     `json:"proposed"`
	Changed  []resume.SectionKey `json:"changed"`
}

// Tailor runs the generate, merge and save pipeline on top of a Store.
type Tailor struct {
	store   *Store
	gateway generator.Gateway
}

func NewTailor(store *Store, gw generator.Gateway) *Tailor {
	return &Tailor{store: store, gateway: gw}
}

// Propose sends the active document to the generator and merges the
// returned candidate with in.ProtectedKeys restored from the original. No
// lock is held on the profile while the generator runs.
func (t *Tailor) Propose(ctx context.Context, in generator.Instructions) (*Proposal, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	active, err := t.store.GetActive(ctx)
	if err != nil {
		return nil, err
	}
	original := active.Clone()

	start := time.Now()
	raw, err := t.gateway.Generate(ctx, original.Clone(), in)
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		var gerr *resume.GenerationError
		if errors.As(err, &gerr) {
			return nil, err
		}
		return nil, &resume.GenerationError{Reason: "the generator is unavailable, please try again", Err: err}
	}

	proposed, err := merge.MergeRaw(original, raw, in.ProtectedSet())
	if err != nil {
		metrics.MergeResults.WithLabelValues("malformed").Inc()
		logger.Warnw("generator returned malformed candidate", "error", err)
		return nil, err
	}
	metrics.MergeResults.WithLabelValues("ok").Inc()
	return &Proposal{
		Original: original,
		Proposed: proposed,
		Changed:  changedSections(original, proposed),
	}, nil
}

// Commit saves a reviewed proposal through the version store.
func (t *Tailor) Commit(ctx context.Context, proposed resume.Document) (*resume.Document, error) {
	return t.store.Save(ctx, proposed)
}

// Summarize asks the generator for a draft summary of the active document.
// The draft is returned, not saved.
func (t *Tailor) Summarize(ctx context.Context) (string, error) {
	active, err := t.store.GetActive(ctx)
	if err != nil {
		return "", err
	}
	s, err := t.gateway.Summarize(ctx, active.PersonalInfo.Title, active.Experience, active.Skills)
	if err != nil {
		var gerr *resume.GenerationError
		if errors.As(err, &gerr) {
			return "", err
		}
		return "", &resume.GenerationError{Reason: "there was an error generating the summary, please try again", Err: err}
	}
	return s, nil
}

func changedSections(a, b resume.Document) []resume.SectionKey {
	out := []resume.SectionKey{}
	for _, k := range resume.DefaultOrder() {
		var same bool
		switch k {
		case resume.SectionSummary:
			same = a.Summary == b.Summary
		case resume.SectionExperience:
			same = sameList(a.Experience, b.Experience)
		case resume.SectionProjects:
			same = sameList(a.Projects, b.Projects)
		case resume.SectionEducation:
			same = sameList(a.Education, b.Education)
		case resume.SectionSkills:
			same = sameList(a.Skills, b.Skills)
		}
		if !same {
			out = append(out, k)
		}
	}
	return out
}

func sameList[T any](a, b []T) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
