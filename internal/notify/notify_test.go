package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnnaPov19/DogFeeder/internal/feeder"
	"github.com/AnnaPov19/DogFeeder/internal/mqtt"
)

func reading(kind feeder.ReadingKind, g float64) feeder.Reading {
	return feeder.Reading{CycleID: "c1", Kind: kind, Grams: g, Time: time.Date(2026, 3, 14, 9, 15, 3, 0, time.UTC)}
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "Dog was fed 500g of food", Format(reading(feeder.ReadingFed, 500)))
	assert.Equal(t, "312.5g of food left", Format(reading(feeder.ReadingRemaining, 312.5)))
	assert.Equal(t, "Dog was fed 0g of food", Format(reading(feeder.ReadingFed, 0)))
}

func TestPushcut_URLEscapesSpaces(t *testing.T) {
	p := NewPushcut("https://api.pushcut.io/x/notifications/DogFeed", time.Second)
	assert.Equal(t,
		"https://api.pushcut.io/x/notifications/DogFeed?text=Dog%20was%20fed%20500g%20of%20food",
		p.URL("Dog was fed 500g of food"))
	assert.Equal(t, "https://api.pushcut.io/x/notifications/DogFeed?text=a%26b%3Dc", p.URL("a&b=c"))
}

func TestPushcut_Send(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		got = r.URL.Query().Get("text")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := NewPushcut(srv.URL, time.Second)
	m := Message{Reading: reading(feeder.ReadingRemaining, 300), Text: "300g of food left"}
	require.NoError(t, p.Send(context.Background(), m))
	assert.Equal(t, "300g of food left", got)
}

func TestPushcut_SendStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	err := NewPushcut(srv.URL, time.Second).Send(context.Background(), Message{Text: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestPushcut_SendTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	err := NewPushcut(srv.URL, 20*time.Millisecond).Send(context.Background(), Message{Text: "x"})
	assert.Error(t, err)
}

func TestMQTT_Send(t *testing.T) {
	pub := mqtt.NewFakePublisher()
	s := NewMQTT(pub)
	m := Message{Reading: reading(feeder.ReadingFed, 500), Text: "Dog was fed 500g of food"}

	require.NoError(t, s.Send(context.Background(), m))
	readings, _ := pub.Snapshot()
	require.Len(t, readings, 1)
	assert.Equal(t, "c1", readings[0].CycleID)
	assert.Contains(t, string(pub.Payloads[0]), `"message":"Dog was fed 500g of food"`)
}

type funcSender struct {
	name string
	fn   func(ctx context.Context, m Message) error
}

func (s funcSender) Name() string                              { return s.name }
func (s funcSender) Send(ctx context.Context, m Message) error { return s.fn(ctx, m) }

type outcome struct {
	sender string
	kind   feeder.ReadingKind
	err    error
}

type recorder struct {
	mu       sync.Mutex
	outcomes []outcome
}

func (r *recorder) NotificationSent(sender string, kind feeder.ReadingKind, err error) {
	r.mu.Lock()
	r.outcomes = append(r.outcomes, outcome{sender, kind, err})
	r.mu.Unlock()
}

func TestDispatcher_DoesNotBlock(t *testing.T) {
	release := make(chan struct{})
	slow := funcSender{name: "slow", fn: func(ctx context.Context, m Message) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	}}
	d := NewDispatcher([]Sender{slow}, time.Second, nil, zerolog.Nop())

	start := time.Now()
	d.Dispatch(reading(feeder.ReadingFed, 500))
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(release)
	d.Wait()
}

func TestDispatcher_FailuresAreContained(t *testing.T) {
	rec := &recorder{}
	var delivered []string
	var mu sync.Mutex
	senders := []Sender{
		funcSender{name: "ok", fn: func(ctx context.Context, m Message) error {
			mu.Lock()
			delivered = append(delivered, m.Text)
			mu.Unlock()
			return nil
		}},
		funcSender{name: "err", fn: func(ctx context.Context, m Message) error {
			return errors.New("connection refused")
		}},
		funcSender{name: "panic", fn: func(ctx context.Context, m Message) error {
			panic("boom")
		}},
		funcSender{name: "hang", fn: func(ctx context.Context, m Message) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	}
	d := NewDispatcher(senders, 20*time.Millisecond, rec, zerolog.Nop())

	d.Dispatch(reading(feeder.ReadingRemaining, 300))
	d.Wait()

	assert.Equal(t, []string{"300g of food left"}, delivered)
	require.Len(t, rec.outcomes, 4)
	byName := map[string]error{}
	for _, o := range rec.outcomes {
		assert.Equal(t, feeder.ReadingRemaining, o.kind)
		byName[o.sender] = o.err
	}
	assert.NoError(t, byName["ok"])
	assert.Error(t, byName["err"])
	assert.ErrorContains(t, byName["panic"], "boom")
	assert.ErrorIs(t, byName["hang"], context.DeadlineExceeded)
}
