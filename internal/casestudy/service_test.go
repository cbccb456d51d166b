package casestudy

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubConverter struct {
	html string
	err  error
}

func (c *stubConverter) Convert(_ context.Context, _ string) (string, error) {
	return c.html, c.err
}

// flakyRepository fails List a configured number of times before delegating.
type flakyRepository struct {
	Repository
	listFailures int
	listCalls    int
	createCalls  int
}

func (r *flakyRepository) List(ctx context.Context) ([]CaseStudy, error) {
	r.listCalls++
	if r.listCalls <= r.listFailures {
		return nil, errors.New("connection reset")
	}
	return r.Repository.List(ctx)
}

func (r *flakyRepository) Create(ctx context.Context, study CaseStudy) error {
	r.createCalls++
	return errors.New("connection reset")
}

func TestCreateRequiresAllFields(t *testing.T) {
	svc := NewService(NewMemoryRepository(), &stubConverter{})
	ctx := context.Background()

	cases := []Input{
		{Description: "d", TechStack: "go"},
		{Title: "t", TechStack: "go"},
		{Title: "t", Description: "d"},
	}
	for _, input := range cases {
		if _, err := svc.Create(ctx, input); !errors.Is(err, ErrMissingFields) {
			t.Fatalf("input %+v: expected ErrMissingFields, got %v", input, err)
		}
	}
}

func TestCRUDRoundTrip(t *testing.T) {
	svc := NewService(NewMemoryRepository(), &stubConverter{})
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Title: "Churn model", Description: "ML case study", TechStack: "Python, XGBoost"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("expected generated id")
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Churn model" {
		t.Fatalf("unexpected title %q", got.Title)
	}

	updated, err := svc.Update(ctx, created.ID, Input{Title: "Churn model v2", Description: "ML case study", TechStack: "Python"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Title != "Churn model v2" {
		t.Fatalf("unexpected title %q", updated.Title)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) && updated.UpdatedAt != created.UpdatedAt {
		t.Fatalf("expected UpdatedAt to advance")
	}

	studies, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(studies) != 1 {
		t.Fatalf("expected 1 study, got %d", len(studies))
	}

	if err := svc.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestUpdateMissingStudy(t *testing.T) {
	svc := NewService(NewMemoryRepository(), &stubConverter{})

	_, err := svc.Update(context.Background(), "no-such-id", Input{Title: "t", Description: "d", TechStack: "go"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListRetriesTransientFailures(t *testing.T) {
	mem := NewMemoryRepository()
	if err := mem.Create(context.Background(), CaseStudy{ID: "s1", Title: "t", Description: "d", TechStack: "go", CreatedAt: time.Now()}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	flaky := &flakyRepository{Repository: mem, listFailures: 2}
	svc := NewService(flaky, &stubConverter{})

	studies, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(studies) != 1 {
		t.Fatalf("expected 1 study, got %d", len(studies))
	}
	if flaky.listCalls != 3 {
		t.Fatalf("expected 3 attempts, got %d", flaky.listCalls)
	}
}

func TestWritesAreNeverRetried(t *testing.T) {
	flaky := &flakyRepository{Repository: NewMemoryRepository()}
	svc := NewService(flaky, &stubConverter{})

	if _, err := svc.Create(context.Background(), Input{Title: "t", Description: "d", TechStack: "go"}); err == nil {
		t.Fatalf("expected create to fail")
	}
	if flaky.createCalls != 1 {
		t.Fatalf("expected a single create attempt, got %d", flaky.createCalls)
	}
}

func TestAttachNotebookStoresContent(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo, &stubConverter{html: "<html>rendered</html>"})
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Title: "t", Description: "d", TechStack: "go"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.AttachNotebook(ctx, created.ID, "ignored.ipynb"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Content != "<html>rendered</html>" {
		t.Fatalf("unexpected content %q", got.Content)
	}
}

func TestAttachNotebookConversionFailure(t *testing.T) {
	repo := NewMemoryRepository()
	convErr := errors.New("nbconvert exploded")
	svc := NewService(repo, &stubConverter{err: convErr})
	ctx := context.Background()

	created, err := svc.Create(ctx, Input{Title: "t", Description: "d", TechStack: "go"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.AttachNotebook(ctx, created.ID, "nb.ipynb"); !errors.Is(err, convErr) {
		t.Fatalf("expected conversion error, got %v", err)
	}

	got, _ := svc.Get(ctx, created.ID)
	if got.Content != "" {
		t.Fatalf("expected no content after failed conversion")
	}
}

func TestAttachNotebookMissingStudy(t *testing.T) {
	svc := NewService(NewMemoryRepository(), &stubConverter{html: "<html></html>"})

	if err := svc.AttachNotebook(context.Background(), "no-such-id", "nb.ipynb"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
