package models

import "testing"

func TestUser_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"full name set", User{Username: "alice", FullName: "Alice Liddell"}, "Alice Liddell"},
		{"falls back to username", User{Username: "bob"}, "bob"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUser_IsAdmin(t *testing.T) {
	if !(&User{Role: RoleAdmin}).IsAdmin() {
		t.Error("admin role should be admin")
	}
	if (&User{Role: RoleUser}).IsAdmin() {
		t.Error("user role should not be admin")
	}
}
