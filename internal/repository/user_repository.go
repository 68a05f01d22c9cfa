package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

const studentColumns = `id, COALESCE(registration_number, '') AS registration_number, name, email,
        COALESCE(department, '') AS department, COALESCE(batch, '') AS batch, is_active`

const advisorColumns = `id, name, email, COALESCE(department, '') AS department, COALESCE(batch, '') AS batch, is_active, created_at`

// UserRepository reads students, advisors and HODs from the shared users table.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository constructs a UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByID fetches any user by id.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	const query = `SELECT id, role, name, email, COALESCE(registration_number, '') AS registration_number,
        COALESCE(department, '') AS department, COALESCE(batch, '') AS batch, is_active, created_at
        FROM users WHERE id = $1`
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, err
	}
	return &user, nil
}

// FindStaffByID fetches a staff member with the raw assignment encoding.
func (r *UserRepository) FindStaffByID(ctx context.Context, id string) (*models.Advisor, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE id = $1 AND role = $2", advisorColumns)
	var advisor models.Advisor
	if err := r.db.GetContext(ctx, &advisor, query, id, models.RoleStaff); err != nil {
		return nil, err
	}
	return &advisor, nil
}

// ListStudents returns the students of a department ordered by registration number. An empty department
// lists every student.
func (r *UserRepository) ListStudents(ctx context.Context, department string) ([]models.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE role = $1", studentColumns)
	args := []interface{}{models.RoleStudent}
	if department != "" {
		query += " AND department = $2"
		args = append(args, department)
	}
	query += " ORDER BY registration_number"

	students := make([]models.Student, 0)
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// ListStaff returns the staff members of a department ordered by name. An empty department lists
// every staff member.
func (r *UserRepository) ListStaff(ctx context.Context, department string) ([]models.Advisor, error) {
	query := fmt.Sprintf("SELECT %s FROM users WHERE role = $1", advisorColumns)
	args := []interface{}{models.RoleStaff}
	if department != "" {
		query += " AND department = $2"
		args = append(args, department)
	}
	query += " ORDER BY name"

	advisors := make([]models.Advisor, 0)
	if err := r.db.SelectContext(ctx, &advisors, query, args...); err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return advisors, nil
}

// UpdateAssignment stores a new assignment encoding for a staff member.
func (r *UserRepository) UpdateAssignment(ctx context.Context, staffID, encoding string) error {
	const query = `UPDATE users SET batch = $1 WHERE id = $2 AND role = $3`
	result, err := r.db.ExecContext(ctx, query, encoding, staffID, models.RoleStaff)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
