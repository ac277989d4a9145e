package repository

import (
	"context"
	"database/sql"
	"fmt"

	"hackr_api/internal/domain/model"
)

type AccessLogRepository interface {
	Create(ctx context.Context, entry *model.AccessLog) error
	// ListNewest returns one page of entries, newest first, and the total entry count.
	ListNewest(ctx context.Context, limit, offset int) ([]model.AccessLog, int, error)
}

type pgAccessLogRepository struct {
	db *sql.DB
}

func NewPgAccessLogRepository(db *sql.DB) AccessLogRepository {
	return &pgAccessLogRepository{db: db}
}

func (r *pgAccessLogRepository) Create(ctx context.Context, entry *model.AccessLog) error {
	query := `INSERT INTO access_logs (user_id, user_first_name, user_email, url, success, error_message, duration_ms)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at`
	err := r.db.QueryRowContext(ctx, query,
		entry.UserID, entry.UserFirstName, entry.UserEmail, entry.URL, entry.Success, entry.ErrorMessage, entry.DurationMs,
	).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgAccessLogRepository.Create: %w", err)
	}
	return nil
}

func (r *pgAccessLogRepository) ListNewest(ctx context.Context, limit, offset int) ([]model.AccessLog, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM access_logs`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgAccessLogRepository.ListNewest count: %w", err)
	}

	query := `SELECT id, user_id, user_first_name, user_email, url, success, error_message, duration_ms, created_at
	          FROM access_logs
	          ORDER BY created_at DESC, id DESC
	          LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgAccessLogRepository.ListNewest: %w", err)
	}
	defer rows.Close()

	logs := make([]model.AccessLog, 0, limit)
	for rows.Next() {
		var (
			entry        model.AccessLog
			userID       sql.NullString
			errorMessage sql.NullString
		)
		if err := rows.Scan(
			&entry.ID, &userID, &entry.UserFirstName, &entry.UserEmail, &entry.URL,
			&entry.Success, &errorMessage, &entry.DurationMs, &entry.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("pgAccessLogRepository.ListNewest scan: %w", err)
		}
		if userID.Valid {
			entry.UserID = &userID.String
		}
		if errorMessage.Valid {
			entry.ErrorMessage = &errorMessage.String
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgAccessLogRepository.ListNewest rows: %w", err)
	}
	return logs, total, nil
}
