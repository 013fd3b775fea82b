package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/AnnaPov19/DogFeeder/internal/feeder"
)

// Dispatcher fans readings out to every sender. Each delivery runs in its own
// goroutine under a timeout; failures and panics are logged and recorded, never
// returned. Deliveries are not retried.
type Dispatcher struct {
	senders  []Sender
	timeout  time.Duration
	recorder Recorder
	log      zerolog.Logger

	wg sync.WaitGroup
}

// NewDispatcher creates a dispatcher. recorder may be nil.
func NewDispatcher(senders []Sender, timeout time.Duration, recorder Recorder, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		senders:  senders,
		timeout:  timeout,
		recorder: recorder,
		log:      log,
	}
}

// Dispatch starts delivery of r and returns immediately.
func (d *Dispatcher) Dispatch(r feeder.Reading) {
	m := Message{Reading: r, Text: Format(r)}
	d.log.Info().Str("cycle", r.CycleID).Str("kind", string(r.Kind)).Str("text", m.Text).Msg("notifying")
	for _, s := range d.senders {
		d.wg.Add(1)
		go d.deliver(s, m)
	}
}

func (d *Dispatcher) deliver(s Sender, m Message) {
	defer d.wg.Done()

	var err error
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("sender panicked: %v", r)
		}
		if err != nil {
			d.log.Warn().Err(err).Str("sender", s.Name()).Str("kind", string(m.Kind)).Msg("notification failed")
		} else {
			d.log.Debug().Str("sender", s.Name()).Str("kind", string(m.Kind)).Msg("notification sent")
		}
		if d.recorder != nil {
			d.recorder.NotificationSent(s.Name(), m.Kind, err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	err = s.Send(ctx, m)
}

// Wait blocks until every started delivery has finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
