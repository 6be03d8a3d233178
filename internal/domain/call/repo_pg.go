package call

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const callCols = `id, patient_id, prompt_id, schedule_id, phone_number, provider_call_id,
	status, started_at, completed_at, duration_seconds, transcript, transcript_entries,
	recording_url, log_url, transcript_url, analysis_summary, analysis_structured,
	analysis_success, created_at, updated_at`

func (r *repoPG) scanCall(row pgx.Row) (*Call, error) {
	var c Call
	err := row.Scan(&c.ID, &c.PatientID, &c.PromptID, &c.ScheduleID, &c.PhoneNumber, &c.ProviderCallID,
		&c.Status, &c.StartedAt, &c.CompletedAt, &c.DurationSeconds, &c.Transcript, &c.TranscriptEntries,
		&c.RecordingURL, &c.LogURL, &c.TranscriptURL, &c.AnalysisSummary, &c.AnalysisStructured,
		&c.AnalysisSuccess, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &c, err
}

func (r *repoPG) Create(ctx context.Context, c *Call) error {
	c.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO call_record (id, patient_id, prompt_id, schedule_id, phone_number,
			provider_call_id, status, started_at, completed_at, duration_seconds,
			transcript, transcript_entries, recording_url, log_url, transcript_url,
			analysis_summary, analysis_structured, analysis_success)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		c.ID, c.PatientID, c.PromptID, c.ScheduleID, c.PhoneNumber,
		c.ProviderCallID, c.Status, c.StartedAt, c.CompletedAt, c.DurationSeconds,
		c.Transcript, c.TranscriptEntries, c.RecordingURL, c.LogURL, c.TranscriptURL,
		c.AnalysisSummary, c.AnalysisStructured, c.AnalysisSuccess)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Call, error) {
	return r.scanCall(r.pool.QueryRow(ctx, `SELECT `+callCols+` FROM call_record WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, c *Call) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE call_record SET provider_call_id=$2, status=$3, started_at=$4, completed_at=$5,
			duration_seconds=$6, transcript=$7, transcript_entries=$8, recording_url=$9,
			log_url=$10, transcript_url=$11, analysis_summary=$12, analysis_structured=$13,
			analysis_success=$14, updated_at=NOW()
		WHERE id = $1`,
		c.ID, c.ProviderCallID, c.Status, c.StartedAt, c.CompletedAt,
		c.DurationSeconds, c.Transcript, c.TranscriptEntries, c.RecordingURL,
		c.LogURL, c.TranscriptURL, c.AnalysisSummary, c.AnalysisStructured,
		c.AnalysisSuccess)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Call, int, error) {
	return r.list(ctx, `patient_id`, patientID, limit, offset)
}

func (r *repoPG) ListBySchedule(ctx context.Context, scheduleID uuid.UUID, limit, offset int) ([]*Call, int, error) {
	return r.list(ctx, `schedule_id`, scheduleID, limit, offset)
}

func (r *repoPG) list(ctx context.Context, col string, id uuid.UUID, limit, offset int) ([]*Call, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM call_record WHERE `+col+` = $1`, id).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+callCols+` FROM call_record WHERE `+col+` = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, id, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Call
	for rows.Next() {
		c, err := r.scanCall(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, nil
}
