package group

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// Repository handles group data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new group repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const groupColumns = `g.id, g.name, g.currency, g.category, g.invite_token, g.created_by, g.created_at`

func scanGroup(row interface{ Scan(...any) error }, group *Group) error {
	return row.Scan(
		&group.ID,
		&group.Name,
		&group.Currency,
		&group.Category,
		&group.InviteToken,
		&group.CreatedBy,
		&group.CreatedAt,
	)
}

// isForeignKeyViolation reports whether err is a PostgreSQL foreign key violation
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}

// Create inserts a group with its creator as admin and any initial members, in one transaction
func (r *Repository) Create(ctx context.Context, group *Group, memberIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO groups (name, currency, category, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	if err := tx.QueryRowContext(ctx, query, group.Name, group.Currency, group.Category, group.CreatedBy).Scan(
		&group.ID,
		&group.CreatedAt,
	); err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	memberQuery := `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`
	if _, err := tx.ExecContext(ctx, memberQuery, group.ID, group.CreatedBy, MemberRoleAdmin); err != nil {
		return fmt.Errorf("failed to add group admin: %w", err)
	}
	for _, userID := range memberIDs {
		if _, err := tx.ExecContext(ctx, memberQuery, group.ID, userID, MemberRoleMember); err != nil {
			if isForeignKeyViolation(err) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to add group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit group: %w", err)
	}
	return nil
}

// GetByID retrieves a group by its ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.id = $1`

	group := &Group{}
	if err := scanGroup(r.db.QueryRowContext(ctx, query, id), group); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// GetByInviteToken retrieves the group a token invites to
func (r *Repository) GetByInviteToken(ctx context.Context, token string) (*Group, error) {
	query := `SELECT ` + groupColumns + ` FROM groups g WHERE g.invite_token = $1`

	group := &Group{}
	if err := scanGroup(r.db.QueryRowContext(ctx, query, token), group); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group by invite: %w", err)
	}

	return group, nil
}

// ListByUserID retrieves all groups a user currently belongs to
func (r *Repository) ListByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Group, int, error) {
	// Get total count
	var total int
	countQuery := `SELECT COUNT(*) FROM group_members WHERE user_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count groups: %w", err)
	}

	query := `
		SELECT ` + groupColumns + `
		FROM groups g
		JOIN group_members gm ON g.id = gm.group_id
		WHERE gm.user_id = $1
		ORDER BY g.created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list groups: %w", err)
	}
	defer rows.Close()

	var groups []*Group
	for rows.Next() {
		group := &Group{}
		if err := scanGroup(rows, group); err != nil {
			return nil, 0, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}

	return groups, total, rows.Err()
}

// Update modifies the name or category of a group
func (r *Repository) Update(ctx context.Context, id int64, req *UpdateGroupRequest) (*Group, error) {
	query := `
		UPDATE groups g
		SET name = COALESCE($2, name),
		    category = COALESCE($3, category)
		WHERE g.id = $1
		RETURNING ` + groupColumns

	group := &Group{}
	if err := scanGroup(r.db.QueryRowContext(ctx, query, id, req.Name, req.Category), group); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	return group, nil
}

// SetInviteToken stores token unless the group already has one, and returns the token in effect
func (r *Repository) SetInviteToken(ctx context.Context, id int64, token string) (string, error) {
	query := `
		UPDATE groups
		SET invite_token = COALESCE(invite_token, $2)
		WHERE id = $1
		RETURNING invite_token
	`

	var current string
	if err := r.db.QueryRowContext(ctx, query, id, token).Scan(&current); err != nil {
		return "", fmt.Errorf("failed to set invite token: %w", err)
	}
	return current, nil
}

// AddMember adds a user to a group
func (r *Repository) AddMember(ctx context.Context, groupID, userID int64, role MemberRole) (*GroupMember, error) {
	query := `
		INSERT INTO group_members (group_id, user_id, role)
		VALUES ($1, $2, $3)
		RETURNING group_id, user_id, role, joined_at
	`

	member := &GroupMember{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID, role).Scan(
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.JoinedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, ErrMemberAlreadyExists
		}
		if isForeignKeyViolation(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to add member: %w", err)
	}

	return member, nil
}

// GetMembers retrieves all current members of a group
func (r *Repository) GetMembers(ctx context.Context, groupID int64) ([]*GroupMember, error) {
	query := `
		SELECT gm.group_id, gm.user_id, gm.role, gm.joined_at, u.name, u.email
		FROM group_members gm
		JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at, gm.user_id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get members: %w", err)
	}
	defer rows.Close()

	var members []*GroupMember
	for rows.Next() {
		member := &GroupMember{}
		if err := rows.Scan(
			&member.GroupID,
			&member.UserID,
			&member.Role,
			&member.JoinedAt,
			&member.Name,
			&member.Email,
		); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, member)
	}

	return members, rows.Err()
}

// GetMember retrieves a specific member of a group
func (r *Repository) GetMember(ctx context.Context, groupID, userID int64) (*GroupMember, error) {
	query := `
		SELECT gm.group_id, gm.user_id, gm.role, gm.joined_at, u.name, u.email
		FROM group_members gm
		JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1 AND gm.user_id = $2
	`

	member := &GroupMember{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID).Scan(
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.JoinedAt,
		&member.Name,
		&member.Email,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get member: %w", err)
	}

	return member, nil
}

// RemoveMember removes a user from a group. Their expenses and settlements are kept.
func (r *Repository) RemoveMember(ctx context.Context, groupID, userID int64) error {
	query := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`

	result, err := r.db.ExecContext(ctx, query, groupID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrMemberNotFound
	}

	return nil
}

// UpdateMemberRole changes a member's role. It returns nil when the user is not a member.
func (r *Repository) UpdateMemberRole(ctx context.Context, groupID, userID int64, role MemberRole) (*GroupMember, error) {
	query := `
		UPDATE group_members gm
		SET role = $3
		FROM users u
		WHERE gm.group_id = $1 AND gm.user_id = $2 AND u.id = gm.user_id
		RETURNING gm.group_id, gm.user_id, gm.role, gm.joined_at, u.name, u.email
	`

	member := &GroupMember{}
	err := r.db.QueryRowContext(ctx, query, groupID, userID, role).Scan(
		&member.GroupID,
		&member.UserID,
		&member.Role,
		&member.JoinedAt,
		&member.Name,
		&member.Email,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update member: %w", err)
	}

	return member, nil
}

// HandOver promotes successorID to admin and removes leavingID, in one transaction
func (r *Repository) HandOver(ctx context.Context, groupID, leavingID, successorID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	promote := `UPDATE group_members SET role = $3 WHERE group_id = $1 AND user_id = $2`
	result, err := tx.ExecContext(ctx, promote, groupID, successorID, MemberRoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to promote member: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	} else if n == 0 {
		return ErrMemberNotFound
	}

	remove := `DELETE FROM group_members WHERE group_id = $1 AND user_id = $2`
	result, err = tx.ExecContext(ctx, remove, groupID, leavingID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if n, err := result.RowsAffected(); err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	} else if n == 0 {
		return ErrMemberNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit hand over: %w", err)
	}
	return nil
}

// Delete removes a group. Members, expenses and settlements go with it through ON DELETE CASCADE.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM groups WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrGroupNotFound
	}

	return nil
}
