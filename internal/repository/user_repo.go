package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"curiousminds/internal/database"
	"curiousminds/internal/models"
)

// ErrDuplicateUsername is returned when a save would map an existing username
// to a second storage id
var ErrDuplicateUsername = errors.New("duplicate username")

var userColumns = []string{
	"id", "username", "full_name", "role", "email", "phone", "password_hash",
	"active", "allowed_modules", "institute", "school", "assigned_teacher_id",
	"teacher_notes", "avatar_url",
}

const userSelect = `
	SELECT id, username, full_name, role, email, phone, password_hash,
	       active, allowed_modules, institute, school, assigned_teacher_id,
	       teacher_notes, avatar_url
	FROM users
`

// UserRepository handles local-cache storage of user profiles
type UserRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Save upserts a profile by id. A save whose normalized username already
// belongs to a different id fails with ErrDuplicateUsername and leaves the
// existing profile unchanged.
func (r *UserRepository) Save(user *models.User) error {
	username := models.NormalizeUsername(user.Username)

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var existingID string
	err = tx.QueryRow("SELECT id FROM users WHERE username = ?", username).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if err == nil && existingID != user.ID {
		return fmt.Errorf("username %s already belongs to another account: %w", username, ErrDuplicateUsername)
	}

	modules, err := json.Marshal(user.AllowedModules)
	if err != nil {
		return fmt.Errorf("failed to encode modules: %w", err)
	}

	query := r.db.Dialect.UpsertQuery("users", userColumns, "id")
	if _, err := tx.Exec(query,
		user.ID, username, user.FullName, string(user.Role), user.Email, user.Phone,
		user.PasswordHash, user.Active, string(modules), user.Institute, user.School,
		user.AssignedTeacherID, user.TeacherNotes, user.AvatarURL,
	); err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user save: %w", err)
	}
	return nil
}

// GetByID retrieves a profile by storage id, nil if not cached
func (r *UserRepository) GetByID(id string) (*models.User, error) {
	row := r.db.QueryRow(userSelect+"WHERE id = ?", id)
	return scanUser(row)
}

// GetByUsername retrieves a profile by normalized username, nil if not cached
func (r *UserRepository) GetByUsername(username string) (*models.User, error) {
	row := r.db.QueryRow(userSelect+"WHERE username = ?", models.NormalizeUsername(username))
	return scanUser(row)
}

// GetAll retrieves every cached profile
func (r *UserRepository) GetAll() ([]models.User, error) {
	rows, err := r.db.Query(userSelect + "ORDER BY username ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUserRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}

	return users, nil
}

// Delete removes a profile from the local cache
func (r *UserRepository) Delete(id string) error {
	if _, err := r.db.Exec("DELETE FROM users WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete user %s: %w", id, err)
	}
	return nil
}

func scanUser(row *sql.Row) (*models.User, error) {
	user, err := scanUserRow(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

func scanUserRow(scan func(dest ...interface{}) error) (*models.User, error) {
	var user models.User
	var role, modules string
	if err := scan(
		&user.ID, &user.Username, &user.FullName, &role, &user.Email, &user.Phone,
		&user.PasswordHash, &user.Active, &modules, &user.Institute, &user.School,
		&user.AssignedTeacherID, &user.TeacherNotes, &user.AvatarURL,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}

	user.Role = models.UserRole(role)
	user.AllowedModules = []string{}
	if modules != "" {
		if err := json.Unmarshal([]byte(modules), &user.AllowedModules); err != nil {
			return nil, fmt.Errorf("failed to decode modules: %w", err)
		}
	}

	return &user, nil
}
