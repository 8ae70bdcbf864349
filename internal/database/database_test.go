package database

import "testing"

func TestConvertPlaceholders(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"SELECT balance FROM users WHERE id = ?", "SELECT balance FROM users WHERE id = $1"},
		{"INSERT INTO users (id, balance) VALUES (?, ?)", "INSERT INTO users (id, balance) VALUES ($1, $2)"},
		{"UPDATE users SET balance = ?, last_daily = ? WHERE id = ?", "UPDATE users SET balance = $1, last_daily = $2 WHERE id = $3"},
		{"SELECT 1", "SELECT 1"},
	}

	for _, c := range cases {
		if got := convertPlaceholders(c.in); got != c.want {
			t.Errorf("convertPlaceholders(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
