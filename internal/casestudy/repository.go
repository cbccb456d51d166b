package casestudy

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when no case study matches the identifier.
var ErrNotFound = errors.New("case study not found")

// Repository persists case studies.
type Repository interface {
	List(ctx context.Context) ([]CaseStudy, error)
	Get(ctx context.Context, id string) (CaseStudy, error)
	Create(ctx context.Context, study CaseStudy) error
	Update(ctx context.Context, study CaseStudy) error
	Delete(ctx context.Context, id string) error
	SetContent(ctx context.Context, id, content string, updatedAt time.Time) error
}

// PostgresRepository stores case studies in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// List returns all case studies, newest first.
func (r *PostgresRepository) List(ctx context.Context) ([]CaseStudy, error) {
	rows, err := r.db.Query(ctx, `SELECT id, title, description, tech_stack, content, created_at, updated_at
        FROM case_studies ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var studies []CaseStudy
	for rows.Next() {
		study, err := scanStudy(rows)
		if err != nil {
			return nil, err
		}
		studies = append(studies, study)
	}
	return studies, rows.Err()
}

// Get fetches a case study by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (CaseStudy, error) {
	studyID, err := uuid.Parse(id)
	if err != nil {
		return CaseStudy{}, ErrNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT id, title, description, tech_stack, content, created_at, updated_at
        FROM case_studies WHERE id = $1`, studyID)
	study, err := scanStudy(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CaseStudy{}, ErrNotFound
		}
		return CaseStudy{}, err
	}
	return study, nil
}

// Create inserts a case study record.
func (r *PostgresRepository) Create(ctx context.Context, study CaseStudy) error {
	studyID, err := uuid.Parse(study.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO case_studies (id, title, description, tech_stack, content, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		studyID, study.Title, study.Description, study.TechStack, study.Content, study.CreatedAt.UTC(), study.UpdatedAt.UTC())
	return err
}

// Update overwrites the editable fields of an existing case study.
func (r *PostgresRepository) Update(ctx context.Context, study CaseStudy) error {
	studyID, err := uuid.Parse(study.ID)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE case_studies SET title = $1, description = $2, tech_stack = $3, updated_at = $4
        WHERE id = $5`,
		study.Title, study.Description, study.TechStack, study.UpdatedAt.UTC(), studyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a case study.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	studyID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM case_studies WHERE id = $1`, studyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetContent stores rendered notebook HTML on the case study.
func (r *PostgresRepository) SetContent(ctx context.Context, id, content string, updatedAt time.Time) error {
	studyID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE case_studies SET content = $1, updated_at = $2 WHERE id = $3`,
		content, updatedAt.UTC(), studyID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanStudy(row pgx.Row) (CaseStudy, error) {
	var (
		id        uuid.UUID
		createdAt time.Time
		updatedAt time.Time
		study     CaseStudy
	)
	if err := row.Scan(&id, &study.Title, &study.Description, &study.TechStack, &study.Content, &createdAt, &updatedAt); err != nil {
		return CaseStudy{}, err
	}
	study.ID = id.String()
	study.CreatedAt = createdAt.UTC()
	study.UpdatedAt = updatedAt.UTC()
	return study, nil
}
