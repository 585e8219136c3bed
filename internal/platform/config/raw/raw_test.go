package raw

import "testing"

func TestGet(t *testing.T) {
	t.Setenv("LOG_LEVEL", " info ")
	t.Setenv("API_LOG_LEVEL", "warn")

	log := New().Prefix("LOG_")
	if got := log.Get("LEVEL", "debug"); got != "info" {
		t.Fatalf("LOG_LEVEL = %q", got)
	}
	if got := New().Prefix("API_").Prefix("LOG_").Get("LEVEL", ""); got != "warn" {
		t.Fatalf("nested = %q", got)
	}
	if got := log.Get("FORMAT", "console"); got != "console" {
		t.Fatalf("default = %q", got)
	}
}

func TestGetBoolAndInt(t *testing.T) {
	c := New().Prefix("RAWT_")
	env := map[string]string{
		"YES":  "YES",
		"ONE":  " 1 ",
		"NO":   "no",
		"JUNK": "maybe",
		"N":    "42",
		"NEG":  "-5",
		"ALPH": "12x",
	}
	for k, v := range env {
		t.Setenv("RAWT_"+k, v)
	}

	bools := []struct {
		key  string
		def  bool
		want bool
	}{
		{"YES", false, true},
		{"ONE", false, true},
		{"NO", true, false},
		{"JUNK", true, false},
		{"UNSET", true, true},
	}
	for _, b := range bools {
		if got := c.GetBool(b.key, b.def); got != b.want {
			t.Fatalf("GetBool(%s) = %v", b.key, got)
		}
	}

	ints := []struct {
		key  string
		want int
	}{
		{"N", 42},
		{"NEG", 9},
		{"ALPH", 9},
		{"UNSET", 9},
	}
	for _, i := range ints {
		if got := c.GetInt(i.key, 9); got != i.want {
			t.Fatalf("GetInt(%s) = %d", i.key, got)
		}
	}
}
