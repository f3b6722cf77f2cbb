package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/candidate-tracker/internal/lifecycle"
	"github.com/jonathan/candidate-tracker/internal/types"
)

const candidateColumns = `id, name, email, role, fit_score, fit_category, status,
	screened_at, updated_at, action_comment, is_duplicate, duplicate_info,
	resume_text, job_description, screening_summary, strengths, gaps, recommended_action`

// -----------------------------------------------------------------------------
// Candidate Methods
// -----------------------------------------------------------------------------

// CreateCandidate inserts a candidate and its screened audit row in one transaction.
func (db *DB) CreateCandidate(ctx context.Context, c *types.Candidate, screened *types.CandidateAction) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO candidates (`+candidateColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		c.ID, c.Name, c.Email, c.Role, c.FitScore, string(c.FitCategory), string(c.Status),
		c.ScreenedAt, c.UpdatedAt, c.ActionComment, c.IsDuplicate, c.DuplicateInfo,
		c.ResumeText, c.JobDescription, c.ScreeningSummary, nonNil(c.Strengths), nonNil(c.Gaps),
		string(c.RecommendedAction),
	)
	if err != nil {
		return fmt.Errorf("failed to insert candidate: %w", err)
	}

	if err := insertAction(ctx, tx, screened); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetCandidate retrieves a candidate by ID. Returns nil, nil when absent.
func (db *DB) GetCandidate(ctx context.Context, id uuid.UUID) (*types.Candidate, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	c, err := scanCandidate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get candidate: %w", err)
	}
	return c, nil
}

// ListCandidates retrieves candidates matching filter, newest first.
func (db *DB) ListCandidates(ctx context.Context, filter lifecycle.ListFilter) ([]types.Candidate, error) {
	query, args := buildListQuery(filter)
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()
	return collectCandidates(rows)
}

// FindCandidatesByEmail retrieves every candidate screened under email, newest first.
func (db *DB) FindCandidatesByEmail(ctx context.Context, email string) ([]types.Candidate, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates
		 WHERE LOWER(email) = LOWER($1)
		 ORDER BY screened_at DESC`,
		strings.TrimSpace(email),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates by email: %w", err)
	}
	defer rows.Close()
	return collectCandidates(rows)
}

// UpdateStatus locks the candidate row, runs the guard and applies the change
// with its audit row. Concurrent updates to the same candidate serialize on
// the row lock, so the loser's guard sees the winner's status.
func (db *DB) UpdateStatus(ctx context.Context, update lifecycle.StatusUpdate) (*types.Candidate, *types.CandidateAction, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	c, err := scanCandidate(tx.QueryRow(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE id = $1 FOR UPDATE`, update.CandidateID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, &lifecycle.NotFoundError{CandidateID: update.CandidateID}
		}
		return nil, nil, fmt.Errorf("failed to lock candidate: %w", err)
	}

	if update.Check != nil {
		if err := update.Check(c.Status); err != nil {
			return nil, nil, err
		}
	}

	action := update.Action
	action.CandidateID = c.ID
	action.PreviousStatus = c.Status
	action.NewStatus = update.NewStatus

	c.Status = update.NewStatus
	c.UpdatedAt = update.UpdatedAt
	if update.Comment != "" {
		c.ActionComment = update.Comment
	}

	_, err = tx.Exec(ctx,
		`UPDATE candidates SET status = $1, updated_at = $2, action_comment = $3 WHERE id = $4`,
		string(c.Status), c.UpdatedAt, c.ActionComment, c.ID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to update candidate status: %w", err)
	}

	if err := insertAction(ctx, tx, &action); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, &action, nil
}

// DeleteCandidate removes a candidate and records the deletion. Audit rows are kept.
func (db *DB) DeleteCandidate(ctx context.Context, id uuid.UUID, record *types.CandidateAction) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var status string
	err = tx.QueryRow(ctx, `SELECT status FROM candidates WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &lifecycle.NotFoundError{CandidateID: id}
		}
		return fmt.Errorf("failed to lock candidate: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete candidate: %w", err)
	}

	record.CandidateID = id
	record.PreviousStatus = types.Status(status)
	if err := insertAction(ctx, tx, record); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// -----------------------------------------------------------------------------
// Audit Trail Methods
// -----------------------------------------------------------------------------

// ListActions retrieves the audit trail for a candidate, newest first.
func (db *DB) ListActions(ctx context.Context, candidateID uuid.UUID) ([]types.CandidateAction, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, candidate_id, action_type, comment, previous_status, new_status, actor, created_at
		 FROM candidate_actions
		 WHERE candidate_id = $1
		 ORDER BY created_at DESC, id`,
		candidateID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	defer rows.Close()

	var actions []types.CandidateAction
	for rows.Next() {
		var (
			a                         types.CandidateAction
			actionType, prev, newStat string
		)
		if err := rows.Scan(&a.ID, &a.CandidateID, &actionType, &a.Comment, &prev, &newStat, &a.Actor, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		a.ActionType = types.ActionType(actionType)
		a.PreviousStatus = types.Status(prev)
		a.NewStatus = types.Status(newStat)
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate actions: %w", err)
	}
	return actions, nil
}

func insertAction(ctx context.Context, tx pgx.Tx, a *types.CandidateAction) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO candidate_actions (id, candidate_id, action_type, comment, previous_status, new_status, actor, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.CandidateID, string(a.ActionType), a.Comment,
		string(a.PreviousStatus), string(a.NewStatus), a.Actor, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s action: %w", a.ActionType, err)
	}
	return nil
}

// buildListQuery renders the candidate listing query for filter.
func buildListQuery(filter lifecycle.ListFilter) (string, []any) {
	limit := filter.Limit
	if limit == 0 {
		limit = lifecycle.DefaultListLimit
	}

	query := `SELECT ` + candidateColumns + ` FROM candidates WHERE 1=1`
	args := []any{}
	argNum := 1

	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query += fmt.Sprintf(" AND status = ANY($%d)", argNum)
		args = append(args, statuses)
		argNum++
	}
	if role := strings.TrimSpace(filter.Role); role != "" {
		query += fmt.Sprintf(" AND LOWER(role) = LOWER($%d)", argNum)
		args = append(args, role)
		argNum++
	}
	if filter.FitCategory != "" {
		query += fmt.Sprintf(" AND fit_category = $%d", argNum)
		args = append(args, string(filter.FitCategory))
		argNum++
	}

	query += " ORDER BY screened_at DESC, id"
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, limit)
	}
	return query, args
}

func scanCandidate(row pgx.Row) (*types.Candidate, error) {
	var (
		c                              types.Candidate
		category, status, recommended string
	)
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Role, &c.FitScore, &category, &status,
		&c.ScreenedAt, &c.UpdatedAt, &c.ActionComment, &c.IsDuplicate, &c.DuplicateInfo,
		&c.ResumeText, &c.JobDescription, &c.ScreeningSummary, &c.Strengths, &c.Gaps, &recommended)
	if err != nil {
		return nil, err
	}
	c.FitCategory = types.FitCategory(category)
	c.Status = types.Status(status)
	c.RecommendedAction = types.RecommendedAction(recommended)
	return &c, nil
}

func collectCandidates(rows pgx.Rows) ([]types.Candidate, error) {
	var candidates []types.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate candidates: %w", err)
	}
	return candidates, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
