package expense

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/fkhayef/settleup/internal/ledger"
)

// Repository handles expense data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new expense repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// includedAgg collects an expense's members as a sorted array
const includedAgg = `COALESCE(array_agg(em.user_id ORDER BY em.user_id) FILTER (WHERE em.user_id IS NOT NULL), '{}')`

// Create inserts an expense and its included members in one transaction
func (r *Repository) Create(ctx context.Context, expense *Expense) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO expenses (group_id, payer_id, created_by, description, amount)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`
	if err := tx.QueryRowContext(ctx, query,
		expense.GroupID,
		expense.PayerID,
		expense.CreatedBy,
		expense.Description,
		expense.Amount,
	).Scan(&expense.ID, &expense.CreatedAt); err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}

	memberQuery := `
		INSERT INTO expense_members (expense_id, user_id)
		SELECT $1, unnest($2::bigint[])
	`
	if _, err := tx.ExecContext(ctx, memberQuery, expense.ID, pq.Array(expense.Included)); err != nil {
		return fmt.Errorf("failed to add expense members: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Expense, error) {
	query := `
		SELECT e.id, e.group_id, e.payer_id, e.created_by, e.description, e.amount, e.created_at, u.name,
		       ` + includedAgg + `
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		LEFT JOIN expense_members em ON em.expense_id = e.id
		WHERE e.id = $1
		GROUP BY e.id, u.name
	`

	expense := &Expense{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&expense.ID,
		&expense.GroupID,
		&expense.PayerID,
		&expense.CreatedBy,
		&expense.Description,
		&expense.Amount,
		&expense.CreatedAt,
		&expense.PayerName,
		pq.Array(&expense.Included),
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	return expense, nil
}

// ListByGroup retrieves a page of a group's expenses, newest first
func (r *Repository) ListByGroup(ctx context.Context, groupID int64, limit, offset int) ([]*Expense, int, error) {
	// Get total count
	var total int
	countQuery := `SELECT COUNT(*) FROM expenses WHERE group_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, groupID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count expenses: %w", err)
	}

	query := `
		SELECT e.id, e.group_id, e.payer_id, e.created_by, e.description, e.amount, e.created_at, u.name,
		       ` + includedAgg + `
		FROM expenses e
		JOIN users u ON e.payer_id = u.id
		LEFT JOIN expense_members em ON em.expense_id = e.id
		WHERE e.group_id = $1
		GROUP BY e.id, u.name
		ORDER BY e.created_at DESC, e.id DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, groupID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*Expense
	for rows.Next() {
		expense := &Expense{}
		if err := rows.Scan(
			&expense.ID,
			&expense.GroupID,
			&expense.PayerID,
			&expense.CreatedBy,
			&expense.Description,
			&expense.Amount,
			&expense.CreatedAt,
			&expense.PayerName,
			pq.Array(&expense.Included),
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, expense)
	}

	return expenses, total, rows.Err()
}

// ListGroupExpenses returns every expense of a group in recording order, as ledger input
func (r *Repository) ListGroupExpenses(ctx context.Context, groupID int64) ([]ledger.Expense, error) {
	query := `
		SELECT e.id, e.payer_id, e.amount, ` + includedAgg + `
		FROM expenses e
		LEFT JOIN expense_members em ON em.expense_id = e.id
		WHERE e.group_id = $1
		GROUP BY e.id
		ORDER BY e.id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load group expenses: %w", err)
	}
	defer rows.Close()

	var expenses []ledger.Expense
	for rows.Next() {
		var e ledger.Expense
		if err := rows.Scan(&e.ID, &e.PayerID, &e.Amount, pq.Array(&e.Included)); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}

	return expenses, rows.Err()
}
