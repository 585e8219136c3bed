package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"gitplanet/internal/platform/testkit"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()
	cases := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"INFO":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		" error ": zerolog.ErrorLevel,
		"":        zerolog.DebugLevel,
		"chatty":  zerolog.DebugLevel,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestBuild_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := build(Options{Level: "info", Format: "json", Service: "gitplanet-api", Component: "root", Writer: &buf})
	l.Debug().Msg("dropped")
	l.Info().Msg("kept")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("want exactly one json line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "kept" || line["service"] != "gitplanet-api" || line["component"] != "root" {
		t.Fatalf("line = %v", line)
	}
}

func TestBuild_Console(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := build(Options{Level: "debug", Format: "console", Writer: &buf, WithCaller: true})
	l.Info().Str("login", "octocat").Msg("planet reconciled")
	testkit.MustContain(t, buf.String(), "planet reconciled")
	testkit.MustContain(t, buf.String(), "octocat")
	testkit.MustContain(t, buf.String(), "logger_test.go")
}

func TestWithRequest(t *testing.T) {
	t.Parallel()

	ctx := WithRequest(context.Background(), "req-1", "")
	ctx = WithRequest(ctx, "", "octocat")
	f := ctx.Value(requestKey{}).(requestFields)
	if f.id != "req-1" || f.login != "octocat" {
		t.Fatalf("fields = %+v", f)
	}
	if C(context.Background()) == nil || Named("") != Get() {
		t.Fatal("child loggers")
	}
}

func TestFromEnv(t *testing.T) {
	testkit.Serial(t)
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "JSON")
	t.Setenv("LOG_SERVICE", "gitplanet-refresher")
	t.Setenv("LOG_CALLER", "yes")
	t.Setenv("LOG_SAMPLE_EVERY", "5")

	opt := FromEnv()
	if opt.Level != "warn" || opt.Format != "json" || opt.Service != "gitplanet-refresher" || !opt.WithCaller || opt.SampleEvery != 5 {
		t.Fatalf("FromEnv = %+v", opt)
	}
}
