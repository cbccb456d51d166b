package casestudy

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

type memoryRepository struct {
	mu      sync.RWMutex
	studies map[string]CaseStudy
}

// NewMemoryRepository builds an in-memory case study store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{studies: make(map[string]CaseStudy)}
}

func (r *memoryRepository) List(_ context.Context) ([]CaseStudy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	studies := make([]CaseStudy, 0, len(r.studies))
	for _, study := range r.studies {
		studies = append(studies, study)
	}
	sort.Slice(studies, func(i, j int) bool {
		return studies[i].CreatedAt.After(studies[j].CreatedAt)
	})
	return studies, nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (CaseStudy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	study, ok := r.studies[id]
	if !ok {
		return CaseStudy{}, ErrNotFound
	}
	return study, nil
}

func (r *memoryRepository) Create(_ context.Context, study CaseStudy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.studies[study.ID]; exists {
		return errors.New("case study exists")
	}
	r.studies[study.ID] = study
	return nil
}

func (r *memoryRepository) Update(_ context.Context, study CaseStudy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.studies[study.ID]
	if !ok {
		return ErrNotFound
	}
	existing.Title = study.Title
	existing.Description = study.Description
	existing.TechStack = study.TechStack
	existing.UpdatedAt = study.UpdatedAt
	r.studies[study.ID] = existing
	return nil
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.studies[id]; !ok {
		return ErrNotFound
	}
	delete(r.studies, id)
	return nil
}

func (r *memoryRepository) SetContent(_ context.Context, id, content string, updatedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	study, ok := r.studies[id]
	if !ok {
		return ErrNotFound
	}
	study.Content = content
	study.UpdatedAt = updatedAt
	r.studies[id] = study
	return nil
}
