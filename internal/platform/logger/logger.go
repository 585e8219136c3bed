// Package logger owns the process zerolog root and request scoped children
package logger

import (
	"context"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"gitplanet/internal/platform/config/raw"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Logger is the project logging type
type Logger = zerolog.Logger

// Options shape the root logger
type Options struct {
	Level       string // zerolog level name, unknown means debug
	Format      string // console or json
	Service     string
	Component   string
	Writer      io.Writer // stdout when nil
	WithCaller  bool
	SampleEvery int // keep one line in N when above 1
}

// FromEnv reads LOG_ through the raw reader since config itself logs
func FromEnv() Options {
	rc := raw.New().Prefix("LOG_")
	return Options{
		Level:       rc.Get("LEVEL", "debug"),
		Format:      strings.ToLower(rc.Get("FORMAT", "console")),
		Service:     rc.Get("SERVICE", ""),
		Component:   rc.Get("COMPONENT", ""),
		WithCaller:  rc.GetBool("CALLER", false),
		SampleEvery: rc.GetInt("SAMPLE_EVERY", 0),
	}
}

var (
	once sync.Once
	root atomic.Pointer[Logger]
)

// Init installs the root logger, later calls are no-ops
func Init(opt Options) {
	once.Do(func() {
		zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
		zerolog.TimeFieldFormat = time.RFC3339Nano
		l := build(opt)
		root.Store(&l)
	})
}

// Get returns the root, initializing it from the environment on first use
func Get() *Logger {
	if l := root.Load(); l != nil {
		return l
	}
	Init(FromEnv())
	return root.Load()
}

func build(opt Options) Logger {
	w := opt.Writer
	if w == nil {
		w = os.Stdout
	}
	if opt.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	b := zerolog.New(w).Level(parseLevel(opt.Level)).With().Timestamp()
	if bi, ok := debug.ReadBuildInfo(); ok {
		b = b.Str("go_version", bi.GoVersion)
	}
	if opt.Service != "" {
		b = b.Str("service", opt.Service)
	}
	if opt.Component != "" {
		b = b.Str("component", opt.Component)
	}
	if opt.WithCaller {
		b = b.Caller()
	}

	l := b.Logger()
	if opt.SampleEvery > 1 {
		l = l.Sample(&zerolog.BasicSampler{N: uint32(opt.SampleEvery)})
	}
	return l
}

func parseLevel(s string) zerolog.Level {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "warning" {
		s = "warn"
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.DebugLevel
	}
	return lvl
}

type requestKey struct{}

type requestFields struct{ id, login string }

// WithRequest stores the request id and login for C, blanks keep what ctx had
func WithRequest(ctx context.Context, reqID, login string) context.Context {
	f, _ := ctx.Value(requestKey{}).(requestFields)
	if reqID != "" {
		f.id = reqID
	}
	if login != "" {
		f.login = login
	}
	return context.WithValue(ctx, requestKey{}, f)
}

// C is the root plus whatever WithRequest stored in ctx
func C(ctx context.Context) *Logger {
	f, _ := ctx.Value(requestKey{}).(requestFields)
	b := Get().With()
	if f.id != "" {
		b = b.Str("request_id", f.id)
	}
	if f.login != "" {
		b = b.Str("login", f.login)
	}
	l := b.Logger()
	return &l
}

// Named tags the root with a component
func Named(component string) *Logger {
	if component == "" {
		return Get()
	}
	l := Get().With().Str("component", component).Logger()
	return &l
}
