package cardimg_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-magic-lair/internal/cardimg"
	"go-magic-lair/internal/fetch"
	"go-magic-lair/internal/model"
)

type event struct {
	ref   string
	state cardimg.State
}

type recorder struct {
	mu     sync.Mutex
	events []event
	ch     chan event
}

func newRecorder() *recorder { return &recorder{ch: make(chan event, 16)} }

func (r *recorder) notify(ref string, s cardimg.State) {
	r.mu.Lock()
	r.events = append(r.events, event{ref, s})
	r.mu.Unlock()
	r.ch <- event{ref, s}
}

func (r *recorder) wait(t *testing.T) event {
	t.Helper()
	select {
	case e := <-r.ch:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no state change")
	}
	return event{}
}

func TestTracker_DeadlineForcesFailed(t *testing.T) {
	rec := newRecorder()
	tr := cardimg.NewTracker(30*time.Millisecond, rec.notify)
	defer tr.Stop()

	require.True(t, tr.Reset("https://img/a.jpg"))
	assert.Equal(t, event{"https://img/a.jpg", cardimg.Pending}, rec.wait(t))
	assert.Equal(t, event{"https://img/a.jpg", cardimg.Failed}, rec.wait(t))

	_, s := tr.State()
	assert.Equal(t, cardimg.Failed, s)
}

func TestTracker_LoadedCancelsDeadline(t *testing.T) {
	rec := newRecorder()
	tr := cardimg.NewTracker(30*time.Millisecond, rec.notify)
	defer tr.Stop()

	tr.Reset("a")
	rec.wait(t)
	tr.Loaded("a")
	assert.Equal(t, event{"a", cardimg.Loaded}, rec.wait(t))

	time.Sleep(80 * time.Millisecond)
	tr.Failed("a")
	_, s := tr.State()
	assert.Equal(t, cardimg.Loaded, s)
	rec.mu.Lock()
	assert.Len(t, rec.events, 2)
	rec.mu.Unlock()
}

func TestTracker_ResetKeyedByReference(t *testing.T) {
	rec := newRecorder()
	tr := cardimg.NewTracker(40*time.Millisecond, rec.notify)
	defer tr.Stop()

	tr.Reset("a")
	rec.wait(t)
	tr.Loaded("a")
	rec.wait(t)

	assert.False(t, tr.Reset("a"), "same reference keeps its state")
	_, s := tr.State()
	assert.Equal(t, cardimg.Loaded, s)

	assert.True(t, tr.Reset("b"))
	assert.Equal(t, event{"b", cardimg.Pending}, rec.wait(t))
	tr.Loaded("a") // 过期事件
	ref, s := tr.State()
	assert.Equal(t, "b", ref)
	assert.Equal(t, cardimg.Pending, s)
	assert.Equal(t, event{"b", cardimg.Failed}, rec.wait(t))
}

func TestTracker_StaleTimerIgnored(t *testing.T) {
	rec := newRecorder()
	tr := cardimg.NewTracker(30*time.Millisecond, rec.notify)
	defer tr.Stop()

	tr.Reset("a")
	rec.wait(t)
	time.Sleep(10 * time.Millisecond)
	tr.Reset("b")
	rec.wait(t)
	tr.Loaded("b")
	assert.Equal(t, event{"b", cardimg.Loaded}, rec.wait(t))

	time.Sleep(60 * time.Millisecond)
	_, s := tr.State()
	assert.Equal(t, cardimg.Loaded, s)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", cardimg.Pending.String())
	assert.Equal(t, "loaded", cardimg.Loaded.String())
	assert.Equal(t, "failed", cardimg.Failed.String())
}

func TestProbe(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/ok.jpg", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("jpeg"))
	})
	mux.HandleFunc("/slow.jpg", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	cl, err := fetch.New(fetch.Options{Timeout: 5 * time.Second})
	require.NoError(t, err)

	decks := []model.Deck{
		{ID: "ok", ImageURL: srv.URL + "/ok.jpg"},
		{ID: "missing", ImageURL: srv.URL + "/missing.jpg"},
		{ID: "slow", ImageURL: srv.URL + "/slow.jpg"},
		{ID: "local", ImageURL: "/images/local.jpg"},
		{ID: "slow-again", ImageURL: srv.URL + "/slow.jpg"},
	}
	got := cardimg.Probe(context.Background(), cl, decks, 100*time.Millisecond)
	assert.Equal(t, map[string]cardimg.State{
		"ok":         cardimg.Loaded,
		"missing":    cardimg.Failed,
		"slow":       cardimg.Failed,
		"slow-again": cardimg.Failed,
	}, got)
}
