package models

import (
	"testing"
)

func TestDecodeUser(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, u *User)
		wantErr bool
	}{
		{
			name:    "camelCase payload",
			payload: `{"id":"u-1","username":"riya","fullName":"Riya","role":"teacher","allowedModules":["math"],"assignedTeacherId":"t-9"}`,
			check: func(t *testing.T, u *User) {
				if u.Username != "RIYA" {
					t.Errorf("Username = %q, want upper-cased RIYA", u.Username)
				}
				if u.FullName != "Riya" || u.Role != RoleTeacher {
					t.Errorf("FullName/Role = %q/%q", u.FullName, u.Role)
				}
				if len(u.AllowedModules) != 1 || u.AllowedModules[0] != "math" {
					t.Errorf("AllowedModules = %v, want [math]", u.AllowedModules)
				}
				if u.AssignedTeacherID != "t-9" {
					t.Errorf("AssignedTeacherID = %q, want t-9", u.AssignedTeacherID)
				}
			},
		},
		{
			name:    "snake_case payload",
			payload: `{"id":"u-2","username":"dev","full_name":"Dev","allowed_modules":["dictation"],"institute_name":"Hilltop","school_branch":"North"}`,
			check: func(t *testing.T, u *User) {
				if u.FullName != "Dev" {
					t.Errorf("FullName = %q, want Dev", u.FullName)
				}
				if len(u.AllowedModules) != 1 || u.AllowedModules[0] != "dictation" {
					t.Errorf("AllowedModules = %v, want [dictation]", u.AllowedModules)
				}
				if u.Institute != "Hilltop" || u.School != "North" {
					t.Errorf("Institute/School = %q/%q", u.Institute, u.School)
				}
			},
		},
		{
			name:    "precedence when both shapes are present",
			payload: `{"username":"x","full_name":"Snake","fullName":"Camel","allowed_modules":["a"],"allowedModules":["b"]}`,
			check: func(t *testing.T, u *User) {
				if u.FullName != "Camel" {
					t.Errorf("FullName = %q, want camelCase precedence", u.FullName)
				}
				if len(u.AllowedModules) != 1 || u.AllowedModules[0] != "a" {
					t.Errorf("AllowedModules = %v, want snake_case precedence", u.AllowedModules)
				}
			},
		},
		{
			name:    "modules as encoded JSON string",
			payload: `{"username":"x","allowed_modules":"[\"math\",\"dictation\"]"}`,
			check: func(t *testing.T, u *User) {
				if len(u.AllowedModules) != 2 {
					t.Fatalf("AllowedModules = %v, want decoded string form", u.AllowedModules)
				}
			},
		},
		{
			name:    "defaults for sparse payload",
			payload: `{"username":"bare"}`,
			check: func(t *testing.T, u *User) {
				if u.FullName != "User" {
					t.Errorf("FullName = %q, want default User", u.FullName)
				}
				if u.Role != RoleStudent {
					t.Errorf("Role = %q, want default student", u.Role)
				}
				if !u.Active {
					t.Error("Active should default to true")
				}
				if u.AllowedModules == nil || len(u.AllowedModules) != 0 {
					t.Errorf("AllowedModules = %v, want empty slice", u.AllowedModules)
				}
			},
		},
		{
			name:    "malformed payload",
			payload: `{"username":`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := DecodeUser([]byte(tt.payload))
			if tt.wantErr {
				if err == nil {
					t.Error("DecodeUser() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeUser() unexpected error: %v", err)
			}
			tt.check(t, u)
		})
	}
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"anaya", "ANAYA"},
		{"  Riya  ", "RIYA"},
		{"DEV01", "DEV01"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeUsername(tt.input); got != tt.expected {
			t.Errorf("NormalizeUsername(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestHasModule(t *testing.T) {
	none := User{AllowedModules: []string{}}
	if none.HasModule("math") {
		t.Error("empty entitlement list should gate every module off")
	}

	restricted := User{AllowedModules: []string{"dictation"}}
	if restricted.HasModule("math") {
		t.Error("restricted user should not see math")
	}
	if !restricted.HasModule("dictation") {
		t.Error("restricted user should see dictation")
	}
}
