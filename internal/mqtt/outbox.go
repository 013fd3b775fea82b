package mqtt

import "github.com/rs/zerolog"

// pendingMsg is a serialized message waiting for the broker.
type pendingMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox holds messages published while the broker is unreachable.
// Readings queue in arrival order up to limit, dropping the oldest first.
// A retained message replaces any earlier retained message on its topic,
// as the broker would keep only the last one.
// Not safe for concurrent use; the publisher holds its lock around every call.
type outbox struct {
	queue   []pendingMsg
	limit   int
	dropped int
	log     zerolog.Logger
}

func newOutbox(limit int, log zerolog.Logger) *outbox {
	return &outbox{limit: limit, log: log}
}

func (o *outbox) add(m pendingMsg) {
	if m.retained {
		for i, q := range o.queue {
			if q.retained && q.topic == m.topic {
				o.queue = append(o.queue[:i], o.queue[i+1:]...)
				break
			}
		}
	}
	if len(o.queue) == o.limit {
		if o.dropped == 0 {
			o.log.Warn().Int("limit", o.limit).Msg("mqtt outbox full, dropping oldest")
		}
		o.dropped++
		o.queue = o.queue[1:]
	}
	o.queue = append(o.queue, m)
}

// take empties the outbox, returning its messages oldest first.
func (o *outbox) take() []pendingMsg {
	out := o.queue
	if o.dropped > 0 {
		o.log.Warn().Int("dropped", o.dropped).Msg("mqtt messages lost while offline")
	}
	o.queue = nil
	o.dropped = 0
	return out
}

func (o *outbox) len() int {
	return len(o.queue)
}
