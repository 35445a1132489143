package models

import (
	"encoding/json"
	"fmt"
)

// Account payloads arrive from two generations of clients: the current one
// writes camelCase JSON, older web clients and raw table rows use snake_case,
// and some historic rows carry the module list as a JSON-encoded string.
// NormalizeUser resolves each logical field through a fixed precedence list
// and returns a single canonical record; ambiguous shapes never travel past
// this boundary.

// DecodeUser parses and normalizes a serialized user payload
func DecodeUser(data []byte) (*User, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse user payload: %w", err)
	}
	return NormalizeUser(raw), nil
}

// NormalizeUser converts a loosely shaped user payload into a canonical User
func NormalizeUser(raw map[string]any) *User {
	u := &User{
		ID:                stringField(raw, "id"),
		Username:          NormalizeUsername(stringField(raw, "username")),
		FullName:          firstString(raw, "fullName", "full_name"),
		Role:              UserRole(stringField(raw, "role")),
		Email:             stringField(raw, "email"),
		Phone:             stringField(raw, "phone"),
		PasswordHash:      firstString(raw, "passwordHash", "password_hash"),
		Active:            boolField(raw, "active", true),
		AllowedModules:    moduleList(raw),
		Institute:         firstString(raw, "institute", "institute_name"),
		School:            firstString(raw, "school", "school_branch"),
		AssignedTeacherID: firstString(raw, "assignedTeacherId", "assigned_teacher_id"),
		TeacherNotes:      firstString(raw, "teacherNotes", "teacher_notes"),
		AvatarURL:         firstString(raw, "avatarUrl", "avatar_url"),
	}

	if u.FullName == "" {
		u.FullName = "User"
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}

	return u
}

// moduleList resolves the entitlement list. Precedence: snake_case array,
// camelCase array, snake_case JSON string, camelCase JSON string, empty.
func moduleList(raw map[string]any) []string {
	if modules := stringSlice(raw["allowed_modules"]); len(modules) > 0 {
		return modules
	}
	if modules := stringSlice(raw["allowedModules"]); len(modules) > 0 {
		return modules
	}
	if modules := encodedStringSlice(raw["allowed_modules"]); len(modules) > 0 {
		return modules
	}
	if modules := encodedStringSlice(raw["allowedModules"]); len(modules) > 0 {
		return modules
	}
	return []string{}
}

func stringField(raw map[string]any, key string) string {
	if s, ok := raw[key].(string); ok {
		return s
	}
	return ""
}

func firstString(raw map[string]any, keys ...string) string {
	for _, key := range keys {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func boolField(raw map[string]any, key string, defaultValue bool) bool {
	if b, ok := raw[key].(bool); ok {
		return b
	}
	return defaultValue
}

func stringSlice(value any) []string {
	items, ok := value.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

// encodedStringSlice handles module lists stored as a JSON string
func encodedStringSlice(value any) []string {
	s, ok := value.(string)
	if !ok || s == "" {
		return nil
	}
	var out []string
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		return nil
	}
	return out
}
