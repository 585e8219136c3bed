package repo

import (
	"strings"
	"testing"
)

func TestSchema_Embedded(t *testing.T) {
	t.Parallel()
	for _, want := range []string{"CREATE TABLE IF NOT EXISTS planet_sessions", "token        uuid", "expires_at"} {
		if !strings.Contains(Schema, want) {
			t.Fatalf("schema missing %q", want)
		}
	}
}
