package settlement

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fkhayef/settleup/internal/ledger"
)

// Repository handles settlement data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new settlement repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new settlement into the database
func (r *Repository) Create(ctx context.Context, settlement *Settlement) error {
	query := `
		INSERT INTO settlements (group_id, from_user_id, to_user_id, amount, note, created_by)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		settlement.GroupID,
		settlement.FromUserID,
		settlement.ToUserID,
		settlement.Amount,
		settlement.Note,
		settlement.CreatedBy,
	).Scan(&settlement.ID, &settlement.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create settlement: %w", err)
	}

	return nil
}

// ListByGroup retrieves a page of a group's settlements, newest first
func (r *Repository) ListByGroup(ctx context.Context, groupID int64, limit, offset int) ([]*Settlement, int, error) {
	// Get total count
	var total int
	countQuery := `SELECT COUNT(*) FROM settlements WHERE group_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count settlements: %w", err)
	}

	query := `
		SELECT s.id, s.group_id, s.from_user_id, s.to_user_id, s.amount, s.note, s.created_by, s.created_at,
		       f.name AS from_name, t.name AS to_name
		FROM settlements s
		JOIN users f ON s.from_user_id = f.id
		JOIN users t ON s.to_user_id = t.id
		WHERE s.group_id = $1
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list settlements: %w", err)
	}
	defer rows.Close()

	var settlements []*Settlement
	for rows.Next() {
		settlement := &Settlement{}
		if err := rows.Scan(
			&settlement.ID,
			&settlement.GroupID,
			&settlement.FromUserID,
			&settlement.ToUserID,
			&settlement.Amount,
			&settlement.Note,
			&settlement.CreatedBy,
			&settlement.CreatedAt,
			&settlement.FromName,
			&settlement.ToName,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, settlement)
	}

	return settlements, total, rows.Err()
}

// ListGroupSettlements returns every settlement of a group in recording order, as ledger input
func (r *Repository) ListGroupSettlements(ctx context.Context, groupID int64) ([]ledger.Settlement, error) {
	query := `
		SELECT from_user_id, to_user_id, amount
		FROM settlements
		WHERE group_id = $1
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group settlements: %w", err)
	}
	defer rows.Close()

	var settlements []ledger.Settlement
	for rows.Next() {
		var s ledger.Settlement
		if err := rows.Scan(&s.From, &s.To, &s.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan settlement: %w", err)
		}
		settlements = append(settlements, s)
	}

	return settlements, rows.Err()
}
