package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/portfolio-blog-api/internal/database"
	"github.com/portfolio-blog-api/internal/models"
)

const jobColumns = `id, type, status, params, result, error, requested_by, created_at, started_at, completed_at`

// jobRepo is the concrete implementation of JobRepository
type jobRepo struct {
	db *database.DB
}

// NewJobRepo creates a new job repository
func NewJobRepo(db *database.DB) JobRepository {
	return &jobRepo{db: db}
}

// Create inserts a new job
func (r *jobRepo) Create(ctx context.Context, job *models.GenerationJob) error {
	query := `
		INSERT INTO generation_jobs (id, type, status, params, requested_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		job.ID, job.Type, job.Status, nullJSON(job.Params), nullString(job.RequestedBy), job.CreatedAt,
	)
	return err
}

func scanJob(row scanner) (*models.GenerationJob, error) {
	var job models.GenerationJob
	var params, result []byte
	var errMsg, requestedBy sql.NullString
	var startedAt, completedAt sql.NullTime

	err := row.Scan(
		&job.ID, &job.Type, &job.Status, &params, &result, &errMsg, &requestedBy,
		&job.CreatedAt, &startedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(params) > 0 {
		job.Params = params
	}
	if len(result) > 0 {
		job.Result = result
	}
	job.Error = errMsg.String
	job.RequestedBy = requestedBy.String
	if startedAt.Valid {
		job.StartedAt = &startedAt.Time
	}
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return &job, nil
}

// GetByID retrieves a job by ID
func (r *jobRepo) GetByID(ctx context.Context, id string) (*models.GenerationJob, error) {
	job, err := scanJob(r.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM generation_jobs WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return job, err
}

// GetPending retrieves unclaimed pending jobs, oldest first
func (r *jobRepo) GetPending(ctx context.Context, limit int) ([]*models.GenerationJob, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM generation_jobs WHERE status = 'PENDING' AND started_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*models.GenerationJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}

	return jobs, rows.Err()
}

// Claim atomically marks a pending job as started
func (r *jobRepo) Claim(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE generation_jobs SET started_at = $1
		WHERE id = $2 AND status = 'PENDING' AND started_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), id)
	if err != nil {
		return false, err
	}
	return affected(result)
}

// Complete writes the terminal status exactly once
func (r *jobRepo) Complete(ctx context.Context, id string, status models.JobStatus, result json.RawMessage, errMsg string) (bool, error) {
	query := `
		UPDATE generation_jobs SET status = $1, result = $2, error = $3, completed_at = $4
		WHERE id = $5 AND status = 'PENDING'
	`
	res, err := r.db.ExecContext(ctx, query, status, nullJSON(result), nullString(errMsg), time.Now(), id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// FailStale fails pending jobs created before the cutoff
func (r *jobRepo) FailStale(ctx context.Context, createdBefore time.Time, errMsg string) (int, error) {
	query := `
		UPDATE generation_jobs SET status = 'FAILED', error = $1, completed_at = $2
		WHERE status = 'PENDING' AND created_at < $3
	`
	result, err := r.db.ExecContext(ctx, query, errMsg, time.Now(), createdBefore)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// CountByStatus returns the number of jobs per status
func (r *jobRepo) CountByStatus(ctx context.Context) (map[models.JobStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM generation_jobs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.JobStatus]int)
	for rows.Next() {
		var status models.JobStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
