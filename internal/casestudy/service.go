package casestudy

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/psoni/portfolio-api/internal/notebook"
)

// ErrMissingFields is returned when a write omits a required field.
var ErrMissingFields = errors.New("missing required fields")

const (
	readAttempts   = 3
	readRetryDelay = 500 * time.Millisecond
)

// Service exposes case study operations.
type Service struct {
	repo      Repository
	converter notebook.Converter
}

// NewService builds a case study service instance.
func NewService(repo Repository, converter notebook.Converter) *Service {
	return &Service{repo: repo, converter: converter}
}

// Input captures the editable fields of a case study. All three are required.
type Input struct {
	Title       string
	Description string
	TechStack   string
}

func (in Input) validate() error {
	if in.Title == "" || in.Description == "" || in.TechStack == "" {
		return ErrMissingFields
	}
	return nil
}

// List returns all case studies. Reads are idempotent, so transient store
// failures are retried a bounded number of times with exponential backoff.
func (s *Service) List(ctx context.Context) ([]CaseStudy, error) {
	var studies []CaseStudy
	err := s.withReadRetry(ctx, func() error {
		var err error
		studies, err = s.repo.List(ctx)
		return err
	})
	return studies, err
}

// Get retrieves a single case study. A missing record is terminal and not
// retried; only store errors are.
func (s *Service) Get(ctx context.Context, id string) (CaseStudy, error) {
	var study CaseStudy
	err := s.withReadRetry(ctx, func() error {
		var err error
		study, err = s.repo.Get(ctx, id)
		return err
	})
	return study, err
}

// Create validates the input and stores a new case study. Writes are never
// retried.
func (s *Service) Create(ctx context.Context, input Input) (CaseStudy, error) {
	if err := input.validate(); err != nil {
		return CaseStudy{}, err
	}

	now := time.Now().UTC()
	study := CaseStudy{
		ID:          uuid.New().String(),
		Title:       input.Title,
		Description: input.Description,
		TechStack:   input.TechStack,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, study); err != nil {
		return CaseStudy{}, err
	}
	return study, nil
}

// Update validates the input and overwrites an existing case study.
func (s *Service) Update(ctx context.Context, id string, input Input) (CaseStudy, error) {
	if err := input.validate(); err != nil {
		return CaseStudy{}, err
	}

	study, err := s.repo.Get(ctx, id)
	if err != nil {
		return CaseStudy{}, err
	}

	study.Title = input.Title
	study.Description = input.Description
	study.TechStack = input.TechStack
	study.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, study); err != nil {
		return CaseStudy{}, err
	}
	return study, nil
}

// Delete removes a case study.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// AttachNotebook converts the uploaded notebook to HTML and stores the
// result on the case study.
func (s *Service) AttachNotebook(ctx context.Context, id, inputPath string) error {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return err
	}

	html, err := s.converter.Convert(ctx, inputPath)
	if err != nil {
		return err
	}

	return s.repo.SetContent(ctx, id, html, time.Now().UTC())
}

func (s *Service) withReadRetry(ctx context.Context, fn func() error) error {
	delay := readRetryDelay
	var lastErr error
	for i := 0; i < readAttempts; i++ {
		err := fn()
		if err == nil || errors.Is(err, ErrNotFound) {
			return err
		}
		lastErr = err
		if i == readAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay *= 2
	}
	return lastErr
}
