// Package generator defines the contract of the external text generator used
// to tailor résumés, and an OpenAI-compatible implementation of it.
package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/resumefire/backend/go-services/internal/resume"
)

var ErrInvalidInstructions = errors.New("invalid generation instructions")

// Instructions tell the generator how to rewrite a document.
type Instructions struct {
	JobText string `json:"jobText" validate:"required"`
	// Intensity runs from 1 (subtle) to 10 (aggressive).
	Intensity int `json:"intensity" validate:"min=1,max=10"`
	// ProtectedKeys are sections the generator should leave alone. The
	// merge step restores them from the original whatever comes back.
	ProtectedKeys []resume.SectionKey `json:"protectedKeys" validate:"unique,dive,oneof=summary experience projects education skills"`
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func (in Instructions) Validate() error {
	validateOnce.Do(func() { validate = validator.New() })
	if err := validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInstructions, err)
	}
	return nil
}

func (in Instructions) ProtectedSet() resume.SectionSet {
	return resume.NewSectionSet(in.ProtectedKeys...)
}

// Gateway is the generator boundary. Generate returns the raw, untrusted
// candidate document; it is decoded and merged by the caller. Neither call
// retries.
type Gateway interface {
	Generate(ctx context.Context, doc resume.Document, in Instructions) ([]byte, error)
	Summarize(ctx context.Context, title string, experience []resume.Experience, skills []string) (string, error)
}

// Unavailable is the gateway used when no generator is configured.
type Unavailable struct{}

const unavailableReason = "AI features are currently unavailable, please configure the generator API key"

func (Unavailable) Generate(context.Context, resume.Document, Instructions) ([]byte, error) {
	return nil, &resume.GenerationError{Reason: unavailableReason}
}

func (Unavailable) Summarize(context.Context, string, []resume.Experience, []string) (string, error) {
	return "", &resume.GenerationError{Reason: unavailableReason}
}
