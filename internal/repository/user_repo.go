package repository

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"brightsteps/internal/database"
	"brightsteps/internal/models"
)

// UserRepository handles database operations for portal accounts
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// CreateUser inserts a new user. The first user ever created becomes an
// admin so the admin floor holds from the start.
func (r *UserRepository) CreateUser(email, name, role string) (*models.User, error) {
	var userCount int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM users").Scan(&userCount); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if userCount == 0 {
		role = models.RoleAdmin
	}

	query := "INSERT INTO users (email, name, role) VALUES (?, ?, ?)"
	id, err := r.db.ExecReturningID(query, email, name, role)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return &models.User{
		ID:        id,
		Email:     email,
		Name:      name,
		Role:      role,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}, nil
}

// GetUserByID retrieves a user by ID
func (r *UserRepository) GetUserByID(id int64) (*models.User, error) {
	query := `
		SELECT id, email, name, role, created_at, updated_at
		FROM users
		WHERE id = ?
	`
	user := &models.User{}
	err := r.db.QueryRow(query, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by email address
func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	query := `
		SELECT id, email, name, role, created_at, updated_at
		FROM users
		WHERE email = ?
	`
	user := &models.User{}
	err := r.db.QueryRow(query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

// GetAllUsers retrieves all users
func (r *UserRepository) GetAllUsers() ([]models.User, error) {
	query := `
		SELECT id, email, name, role, created_at, updated_at
		FROM users
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// GetUsersByIDs retrieves the users matching the given IDs
func (r *UserRepository) GetUsersByIDs(ids []int64) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT id, email, name, role, created_at, updated_at
		FROM users
		WHERE id IN (%s)
		ORDER BY id
	`, placeholders(len(ids)))

	rows, err := r.db.Query(query, int64Args(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users by ids: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// CountAdminsExcluding counts admin users whose ID is not in the given set.
// This is the admin-floor computation: a result of zero means the set covers
// every remaining admin.
func (r *UserRepository) CountAdminsExcluding(ids []int64) (int, error) {
	count, err := countAdminsExcluding(r.db, ids)
	if err != nil {
		return 0, fmt.Errorf("failed to count remaining admins: %w", err)
	}
	return count, nil
}

// PromoteUsers sets the role of every listed user to admin in one transaction
func (r *UserRepository) PromoteUsers(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := fmt.Sprintf(
		"UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id IN (%s)",
		placeholders(len(ids)),
	)
	args := append([]interface{}{models.RoleAdmin}, int64Args(ids)...)
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to promote users: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DemoteUsers sets the role of every listed user to customer. Every admin
// row is locked and the admin floor re-validated inside the transaction so
// a concurrent demotion cannot slip the last admin out between check and
// write; on violation no row is touched and ErrNoAdminsRemaining is
// returned.
func (r *UserRepository) DemoteUsers(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.lockAdminRows(tx); err != nil {
		return err
	}

	remaining, err := countAdminsExcluding(tx, ids)
	if err != nil {
		return fmt.Errorf("failed to count remaining admins: %w", err)
	}
	if remaining == 0 {
		return ErrNoAdminsRemaining
	}

	query := fmt.Sprintf(
		"UPDATE users SET role = ?, updated_at = CURRENT_TIMESTAMP WHERE id IN (%s)",
		placeholders(len(ids)),
	)
	args := append([]interface{}{models.RoleCustomer}, int64Args(ids)...)
	if _, err := tx.Exec(query, args...); err != nil {
		return fmt.Errorf("failed to demote users: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteUsers removes the listed users with the same in-transaction
// admin-floor guard as DemoteUsers.
func (r *UserRepository) DeleteUsers(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := r.lockAdminRows(tx); err != nil {
		return err
	}

	remaining, err := countAdminsExcluding(tx, ids)
	if err != nil {
		return fmt.Errorf("failed to count remaining admins: %w", err)
	}
	if remaining == 0 {
		return ErrNoAdminsRemaining
	}

	query := fmt.Sprintf("DELETE FROM users WHERE id IN (%s)", placeholders(len(ids)))
	if _, err := tx.Exec(query, int64Args(ids)...); err != nil {
		return fmt.Errorf("failed to delete users: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// lockAdminRows locks every current admin row for the rest of the
// transaction where the dialect needs it. Locking the whole admin set,
// not just the rows outside the batch, is what serializes two demotions
// that each spare a different admin; on PostgreSQL and MySQL the plain
// count alone would let both commit and empty the admin set.
func (r *UserRepository) lockAdminRows(tx *database.Tx) error {
	query := "SELECT id FROM users WHERE role = ?"
	if clause := r.db.Dialect.RowLockClause(); clause != "" {
		query += " " + clause
	}

	rows, err := tx.Query(query, models.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to lock admin rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to lock admin rows: %w", err)
	}
	return nil
}

func countAdminsExcluding(dbtx database.DBTX, ids []int64) (int, error) {
	query := "SELECT COUNT(*) FROM users WHERE role = ?"
	args := []interface{}{models.RoleAdmin}
	if len(ids) > 0 {
		query += fmt.Sprintf(" AND id NOT IN (%s)", placeholders(len(ids)))
		args = append(args, int64Args(ids)...)
	}

	var count int
	if err := dbtx.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func scanUsers(rows *sql.Rows) ([]models.User, error) {
	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.Name,
			&user.Role,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// placeholders returns n comma-separated ? placeholders for IN clauses
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func int64Args(ids []int64) []interface{} {
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
