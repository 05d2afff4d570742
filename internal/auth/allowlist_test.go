package auth

import "testing"

func TestParseAllowList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{
			name: "empty config",
			raw:  "",
			want: nil,
		},
		{
			name: "single entry",
			raw:  "a@x.com",
			want: []string{"a@x.com"},
		},
		{
			name: "multiple entries",
			raw:  "a@x.com,b@x.com",
			want: []string{"a@x.com", "b@x.com"},
		},
		{
			name: "entries trimmed",
			raw:  " a@x.com , b@x.com ",
			want: []string{"a@x.com", "b@x.com"},
		},
		{
			name: "entries lower cased",
			raw:  "Admin@X.Com",
			want: []string{"admin@x.com"},
		},
		{
			name: "blank entries dropped",
			raw:  "a@x.com,,  ,b@x.com",
			want: []string{"a@x.com", "b@x.com"},
		},
		{
			name: "only commas",
			raw:  ",,,",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list := ParseAllowList(tt.raw)
			if len(list) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(list), len(tt.want))
			}
			for _, email := range tt.want {
				if !list.Contains(email) {
					t.Errorf("expected %q on the allow-list", email)
				}
			}
		})
	}
}

func TestAllowListContains(t *testing.T) {
	list := ParseAllowList("a@x.com,b@x.com")

	tests := []struct {
		name  string
		email string
		want  bool
	}{
		{"exact match", "a@x.com", true},
		{"second entry", "b@x.com", true},
		{"trailing space on candidate", "a@x.com ", true},
		{"case differs", "A@X.com", true},
		{"not listed", "c@x.com", false},
		{"empty email", "", false},
		{"whitespace only", "   ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := list.Contains(tt.email); got != tt.want {
				t.Errorf("Contains(%q) = %v, want %v", tt.email, got, tt.want)
			}
		})
	}
}

func TestEmptyAllowListGrantsNothing(t *testing.T) {
	list := ParseAllowList("")

	for _, email := range []string{"a@x.com", "", " "} {
		if list.Contains(email) {
			t.Errorf("empty allow-list granted admin to %q", email)
		}
	}
}
