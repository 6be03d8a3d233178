package prompt

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const promptCols = `id, patient_id, name, content, is_active, created_at, updated_at`

func (r *repoPG) scanPrompt(row pgx.Row) (*Prompt, error) {
	var p Prompt
	err := row.Scan(&p.ID, &p.PatientID, &p.Name, &p.Content, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *repoPG) Create(ctx context.Context, p *Prompt) error {
	p.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO prompt (id, patient_id, name, content, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		p.ID, p.PatientID, p.Name, p.Content, p.IsActive)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Prompt, error) {
	return r.scanPrompt(r.pool.QueryRow(ctx, `SELECT `+promptCols+` FROM prompt WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, p *Prompt) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE prompt SET name=$2, content=$3, is_active=$4, updated_at=NOW()
		WHERE id = $1`,
		p.ID, p.Name, p.Content, p.IsActive)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM prompt WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Prompt, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM prompt WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+promptCols+` FROM prompt WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Prompt
	for rows.Next() {
		p, err := r.scanPrompt(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, nil
}
