package mqtt

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
)

func reading(n int) pendingMsg {
	return pendingMsg{topic: Topic, payload: []byte(fmt.Sprintf("r%d", n)), qos: 1}
}

func TestOutboxEmpty(t *testing.T) {
	o := newOutbox(10, zerolog.Nop())
	if o.len() != 0 {
		t.Errorf("len: got %d, want 0", o.len())
	}
	if got := o.take(); got != nil {
		t.Errorf("take on empty outbox: got %v, want nil", got)
	}
}

func TestOutboxKeepsOrder(t *testing.T) {
	o := newOutbox(10, zerolog.Nop())
	for i := 0; i < 3; i++ {
		o.add(reading(i))
	}
	got := o.take()
	if len(got) != 3 {
		t.Fatalf("take: got %d messages, want 3", len(got))
	}
	for i, m := range got {
		if want := fmt.Sprintf("r%d", i); string(m.payload) != want {
			t.Errorf("message %d: got %q, want %q", i, m.payload, want)
		}
	}
	if o.len() != 0 {
		t.Errorf("len after take: got %d, want 0", o.len())
	}
}

func TestOutboxDropsOldestWhenFull(t *testing.T) {
	o := newOutbox(3, zerolog.Nop())
	for i := 0; i < 5; i++ {
		o.add(reading(i))
	}
	if o.dropped != 2 {
		t.Errorf("dropped: got %d, want 2", o.dropped)
	}
	got := o.take()
	if len(got) != 3 || string(got[0].payload) != "r2" || string(got[2].payload) != "r4" {
		t.Errorf("expected r2..r4, got %q", payloads(got))
	}
	if o.dropped != 0 {
		t.Error("take should reset the drop count")
	}
}

func TestOutboxRetainedReplacesPerTopic(t *testing.T) {
	o := newOutbox(10, zerolog.Nop())
	o.add(pendingMsg{topic: TopicSystem, payload: []byte("startup"), retained: true})
	o.add(reading(1))
	o.add(pendingMsg{topic: TopicSystem, payload: []byte("heartbeat")})
	o.add(pendingMsg{topic: TopicSystem, payload: []byte("shutdown"), retained: true})

	got := payloads(o.take())
	want := []string{"r1", "heartbeat", "shutdown"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestOutboxReusableAfterTake(t *testing.T) {
	o := newOutbox(2, zerolog.Nop())
	o.add(reading(1))
	o.take()
	o.add(reading(2))
	o.add(reading(3))
	o.add(reading(4))
	got := payloads(o.take())
	if len(got) != 2 || got[0] != "r3" || got[1] != "r4" {
		t.Errorf("got %q, want [r3 r4]", got)
	}
}

func payloads(ms []pendingMsg) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = string(m.payload)
	}
	return out
}
