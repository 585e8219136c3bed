package meteor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"gitplanet/internal/platform/store"
)

func TestHub_DeliversPerUsername(t *testing.T) {
	t.Parallel()

	h := NewHub(4)
	octo, cancelOcto := h.Subscribe("Octocat")
	defer cancelOcto()
	other, cancelOther := h.Subscribe("hubot")
	defer cancelOther()

	ev := New(KindPlanet, "octocat", map[string]any{"size": 1.5}, time.Now())
	if err := h.Publish(context.Background(), ev); err != nil {
		t.Fatalf("Publish: %v", err)
	}

	select {
	case got := <-octo:
		if got.ID != ev.ID || got.Kind != KindPlanet {
			t.Fatalf("got %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber did not receive the event")
	}
	select {
	case got := <-other:
		t.Fatalf("other user should not see %+v", got)
	default:
	}
}

func TestHub_SlowSubscriberDrops(t *testing.T) {
	t.Parallel()

	h := NewHub(1)
	ch, cancel := h.Subscribe("octocat")
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range 5 {
			_ = h.Publish(context.Background(), New(KindCommits, "octocat", nil, time.Now()))
		}
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	if len(ch) != 1 {
		t.Fatalf("buffer should hold exactly one event, has %d", len(ch))
	}
}

func TestHub_CancelIsIdempotent(t *testing.T) {
	t.Parallel()

	h := NewHub(0)
	ch, cancel := h.Subscribe("octocat")
	if h.Subscribers("OCTOCAT") != 1 {
		t.Fatalf("want 1 subscriber")
	}
	cancel()
	cancel()
	if _, open := <-ch; open {
		t.Fatal("channel should be closed")
	}
	if h.Subscribers("octocat") != 0 {
		t.Fatal("subscriber set should be empty")
	}
	if err := h.Publish(context.Background(), New(KindPlanet, "octocat", nil, time.Now())); err != nil {
		t.Fatalf("publish after cancel: %v", err)
	}
}

type recSink struct {
	got []Event
	err error
}

func (r *recSink) Publish(_ context.Context, evs ...Event) error {
	r.got = append(r.got, evs...)
	return r.err
}

func TestFanout_JoinsErrors(t *testing.T) {
	t.Parallel()

	a := &recSink{}
	b := &recSink{err: errors.New("ch down")}
	f := Fanout{a, nil, b, Nop{}}

	err := f.Publish(context.Background(), New(KindPlanet, "octocat", nil, time.Now()))
	if err == nil || !strings.Contains(err.Error(), "ch down") {
		t.Fatalf("want joined error, got %v", err)
	}
	if len(a.got) != 1 || len(b.got) != 1 {
		t.Fatalf("every sink should receive the event: %d %d", len(a.got), len(b.got))
	}
}

type fakeCH struct {
	table   string
	rows    [][]any
	execSQL string
	err     error
}

func (f *fakeCH) Insert(_ context.Context, table string, data any) error {
	f.table = table
	f.rows, _ = data.([][]any)
	return f.err
}

func (f *fakeCH) Query(context.Context, string, ...any) (store.Rows, error) { return nil, f.err }

func (f *fakeCH) Exec(_ context.Context, sql string, _ ...any) error {
	f.execSQL = sql
	return f.err
}

func (f *fakeCH) Close() error { return nil }

func TestRecorder_InsertsRows(t *testing.T) {
	t.Parallel()

	ch := &fakeCH{}
	r := NewRecorder(ch)
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	ev := Event{ID: uuid.New(), Kind: KindAchievement, Username: "octocat", Payload: map[string]any{"key": "first_commit"}, At: at}

	if err := r.Publish(context.Background(), ev, New(KindPlanet, "octocat", nil, at)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if ch.table != Table || len(ch.rows) != 2 {
		t.Fatalf("insert table=%q rows=%d", ch.table, len(ch.rows))
	}
	row := ch.rows[0]
	if row[0] != ev.ID || row[1] != "achievement" || row[2] != "octocat" || row[3] != `{"key":"first_commit"}` || row[4] != at {
		t.Fatalf("row = %v", row)
	}
	if ch.rows[1][3] != "{}" {
		t.Fatalf("empty payload should encode as {}, got %v", ch.rows[1][3])
	}
}

func TestRecorder_EnsureTableAndErrors(t *testing.T) {
	t.Parallel()

	ch := &fakeCH{}
	r := NewRecorder(ch)
	if err := r.EnsureTable(context.Background()); err != nil {
		t.Fatalf("EnsureTable: %v", err)
	}
	if !strings.Contains(ch.execSQL, "CREATE TABLE IF NOT EXISTS "+Table) {
		t.Fatalf("ddl = %q", ch.execSQL)
	}

	ch.err = errors.New("boom")
	if err := r.Publish(context.Background(), New(KindPlanet, "x", nil, time.Now())); err == nil {
		t.Fatal("want insert error")
	}
}

func TestRecorder_NilSeam(t *testing.T) {
	t.Parallel()

	r := NewRecorder(nil)
	if err := r.EnsureTable(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := r.Publish(context.Background(), New(KindPlanet, "x", nil, time.Now())); err != nil {
		t.Fatal(err)
	}
	if evs, err := r.Recent(context.Background(), "x", 5); err != nil || evs != nil {
		t.Fatalf("Recent = %v %v", evs, err)
	}
}
