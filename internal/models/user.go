package models

import "strings"

// UserRole identifies the account type
type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleParent  UserRole = "parent"
	RoleAdmin   UserRole = "admin"
)

// User represents a learner, teacher, parent or admin account. Username is the
// human-facing unique identifier (always upper-cased); ID is the storage key.
// The two must stay mapped 1:1.
type User struct {
	ID                string   `json:"id"`
	Username          string   `json:"username"`
	FullName          string   `json:"fullName"`
	Role              UserRole `json:"role"`
	Email             string   `json:"email,omitempty"`
	Phone             string   `json:"phone,omitempty"`
	PasswordHash      string   `json:"passwordHash,omitempty"` // admin-provisioned fallback login
	Active            bool     `json:"active"`
	AllowedModules    []string `json:"allowedModules"`
	Institute         string   `json:"institute,omitempty"`
	School            string   `json:"school,omitempty"`
	AssignedTeacherID string   `json:"assignedTeacherId,omitempty"`
	TeacherNotes      string   `json:"teacherNotes,omitempty"`
	AvatarURL         string   `json:"avatarUrl,omitempty"`
}

// NormalizeUsername upper-cases and trims a username for comparison and storage
func NormalizeUsername(username string) string {
	return strings.ToUpper(strings.TrimSpace(username))
}

// HasModule reports whether the user is entitled to a module
func (u *User) HasModule(moduleID string) bool {
	for _, m := range u.AllowedModules {
		if m == moduleID {
			return true
		}
	}
	return false
}
