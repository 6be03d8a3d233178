package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository { return &repoPG{pool: pool} }

const scheduleCols = `id, patient_id, prompt_id, schedule_type, scheduled_time,
	recurrence_type, recurrence_end_date, day_of_week, day_of_month,
	is_active, last_executed_at, attempt_count, last_attempt_at, created_at, updated_at`

func (r *repoPG) scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule
	err := row.Scan(&s.ID, &s.PatientID, &s.PromptID, &s.Type, &s.ScheduledTime,
		&s.RecurrenceType, &s.RecurrenceEndDate, &s.DayOfWeek, &s.DayOfMonth,
		&s.IsActive, &s.LastExecutedAt, &s.AttemptCount, &s.LastAttemptAt, &s.CreatedAt, &s.UpdatedAt)
	return &s, err
}

func (r *repoPG) Create(ctx context.Context, s *Schedule) error {
	s.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO schedule (id, patient_id, prompt_id, schedule_type, scheduled_time,
			recurrence_type, recurrence_end_date, day_of_week, day_of_month, is_active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		s.ID, s.PatientID, s.PromptID, s.Type, s.ScheduledTime,
		s.RecurrenceType, s.RecurrenceEndDate, s.DayOfWeek, s.DayOfMonth, s.IsActive)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	return r.scanSchedule(r.pool.QueryRow(ctx, `SELECT `+scheduleCols+` FROM schedule WHERE id = $1`, id))
}

func (r *repoPG) Update(ctx context.Context, s *Schedule) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE schedule SET schedule_type=$2, scheduled_time=$3, recurrence_type=$4,
			recurrence_end_date=$5, day_of_week=$6, day_of_month=$7, is_active=$8,
			last_executed_at=$9, attempt_count=$10, last_attempt_at=$11, updated_at=NOW()
		WHERE id = $1`,
		s.ID, s.Type, s.ScheduledTime, s.RecurrenceType,
		s.RecurrenceEndDate, s.DayOfWeek, s.DayOfMonth, s.IsActive,
		s.LastExecutedAt, s.AttemptCount, s.LastAttemptAt)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM schedule WHERE id = $1`, id)
	return err
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Schedule, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM schedule WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+scheduleCols+` FROM schedule WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Schedule
	for rows.Next() {
		s, err := r.scanSchedule(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, nil
}

func (r *repoPG) ListActive(ctx context.Context) ([]*Schedule, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+scheduleCols+` FROM schedule WHERE is_active = TRUE ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*Schedule
	for rows.Next() {
		s, err := r.scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, nil
}

func (r *repoPG) ClaimDue(ctx context.Context, id uuid.UUID, now, periodStart time.Time) (bool, error) {
	// The first attempt of a new period restarts the retry budget.
	tag, err := r.pool.Exec(ctx, `
		UPDATE schedule
		SET last_executed_at=$2,
		    attempt_count=CASE WHEN last_attempt_at IS NULL OR last_attempt_at < $3
		                       THEN 1 ELSE attempt_count+1 END,
		    last_attempt_at=$2, updated_at=NOW()
		WHERE id = $1 AND is_active = TRUE
		  AND (last_executed_at IS NULL OR last_executed_at < $3)`,
		id, now, periodStart)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *repoPG) ReleaseClaim(ctx context.Context, id uuid.UUID, prev *time.Time) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE schedule SET last_executed_at=$2, updated_at=NOW() WHERE id = $1`,
		id, prev)
	return err
}

func (r *repoPG) Deactivate(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE schedule SET is_active=FALSE, updated_at=NOW() WHERE id = $1`, id)
	return err
}
