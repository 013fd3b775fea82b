// Package notify turns feeding readings into messages and delivers them to
// remote endpoints without ever blocking the feed cycle.
package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/AnnaPov19/DogFeeder/internal/feeder"
)

// Message is a reading with its rendered text.
type Message struct {
	feeder.Reading
	Text string
}

// Format renders the message template for r.
func Format(r feeder.Reading) string {
	g := strconv.FormatFloat(r.Grams, 'f', -1, 64)
	if r.Kind == feeder.ReadingRemaining {
		return fmt.Sprintf("%sg of food left", g)
	}
	return fmt.Sprintf("Dog was fed %sg of food", g)
}

// Sender delivers a message to one endpoint.
type Sender interface {
	Name() string
	Send(ctx context.Context, m Message) error
}

// Recorder is told the outcome of every delivery attempt.
type Recorder interface {
	NotificationSent(sender string, kind feeder.ReadingKind, err error)
}
