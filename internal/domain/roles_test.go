package domain

import "testing"

func TestNewActor(t *testing.T) {
	tests := []struct {
		name    string
		isAdmin bool
		want    ActorRole
	}{
		{name: "regular user", isAdmin: false, want: ActorUser},
		{name: "administrator", isAdmin: true, want: ActorAdmin},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := NewActor(TelegramProfile{ID: 42}, tt.isAdmin)
			if actor.Role != tt.want {
				t.Fatalf("NewActor(%v) role = %v, want %v", tt.isAdmin, actor.Role, tt.want)
			}
			if actor.IsAdmin() != tt.isAdmin {
				t.Fatalf("IsAdmin() = %v, want %v", actor.IsAdmin(), tt.isAdmin)
			}
			if actor.ID() != 42 {
				t.Fatalf("ID() = %d, want 42", actor.ID())
			}
		})
	}
}

func TestProtectedAdmins(t *testing.T) {
	protected := ProtectedAdmins{100, 0}
	if !protected.Contains(100) {
		t.Fatal("expected 100 to be protected")
	}
	if protected.Contains(0) {
		t.Fatal("zero id must never be protected")
	}
	if ids := protected.IDs(); len(ids) != 1 || ids[0] != 100 {
		t.Fatalf("IDs() = %v, want [100]", ids)
	}
}

func TestChannelLink(t *testing.T) {
	cases := map[string]Channel{
		"https://t.me/news":       {ChatRef: "@news"},
		"https://example.com/j":   {ChatRef: "@news", JoinURL: "https://example.com/j"},
		"":                        {ChatRef: "-1001234567890"},
		"https://t.me/+invite123": {ChatRef: "https://t.me/+invite123"},
	}
	for want, ch := range cases {
		if got := ch.Link(); got != want {
			t.Fatalf("Link(%+v) = %q, want %q", ch, got, want)
		}
	}
}

func TestUserRegistration(t *testing.T) {
	u := User{FirstName: "Ali", LastName: "Valiyev", Phone: "+998901234567"}
	if u.IsRegistered() {
		t.Fatal("user without birth date must not be registered")
	}
	u = ProfileBirthDate.Apply(u, "1990-05-17")
	if !u.IsRegistered() {
		t.Fatal("user with all four fields must be registered")
	}
	if u.MonthDay() != "05-17" {
		t.Fatalf("MonthDay() = %q, want 05-17", u.MonthDay())
	}
}
