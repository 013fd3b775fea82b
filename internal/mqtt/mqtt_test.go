package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/AnnaPov19/DogFeeder/internal/feeder"
)

func testReading() feeder.Reading {
	return feeder.Reading{
		CycleID: "c0ffee",
		Kind:    feeder.ReadingFed,
		Grams:   500,
		Time:    time.Date(2026, 3, 14, 9, 15, 3, 0, time.UTC),
	}
}

func TestFormatPayload(t *testing.T) {
	payload, err := FormatPayload(testReading(), "Dog was fed 500g of food")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Feeder.Timestamp != "2026-03-14T09:15:03Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Feeder.Timestamp)
	}
	if parsed.Feeder.Event != "FED" {
		t.Errorf("unexpected event: %s", parsed.Feeder.Event)
	}
	if parsed.Feeder.CycleID != "c0ffee" {
		t.Errorf("unexpected cycle id: %s", parsed.Feeder.CycleID)
	}
	if parsed.Feeder.Grams != 500 {
		t.Errorf("unexpected grams: %v", parsed.Feeder.Grams)
	}
	if parsed.Feeder.Message != "Dog was fed 500g of food" {
		t.Errorf("unexpected message: %s", parsed.Feeder.Message)
	}
}

func TestFormatPayloadExactJSON(t *testing.T) {
	r := testReading()
	r.Kind = feeder.ReadingRemaining
	r.Grams = 312.5

	payload, err := FormatPayload(r, "312.5g of food left")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"feeder":{"timestamp":"2026-03-14T09:15:03Z","event":"REMAINING","cycle_id":"c0ffee","grams":312.5,"message":"312.5g of food left"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	r := testReading()
	r.Time = time.Date(2026, 3, 14, 10, 15, 3, 0, loc)

	payload, err := FormatPayload(r, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Feeder.Timestamp != "2026-03-14T09:15:03Z" {
		t.Errorf("expected UTC timestamp, got %s", parsed.Feeder.Timestamp)
	}
}

func TestTopic(t *testing.T) {
	if Topic != "home/dogfeeder/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
}

func TestTopicSystem(t *testing.T) {
	if TopicSystem != "home/dogfeeder/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestWillPayloadFormat(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "MQTT_DISCONNECT",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"SHUTDOWN","reason":"MQTT_DISCONNECT"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadReconnected(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		Event:     "RECONNECTED",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T14:30:00Z","event":"RECONNECTED"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"system":{"event":"STARTUP"}}`)
	payload, err := FormatSystemPayload(SystemEvent{Event: "STARTUP", RawPayload: raw})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload not passed through: %s", payload)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	if err := f.PublishReading(testReading(), "Dog was fed 500g of food"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Readings) != 1 {
		t.Fatalf("expected 1 reading, got %d", len(f.Readings))
	}
	if len(f.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(f.Payloads))
	}
	if f.Readings[0].CycleID != "c0ffee" {
		t.Errorf("unexpected cycle id: %s", f.Readings[0].CycleID)
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	expectedErr := errors.New("broker down")
	f.PublishError = expectedErr

	err := f.PublishReading(testReading(), "")
	if err != expectedErr {
		t.Errorf("expected %v, got %v", expectedErr, err)
	}
	if len(f.Readings) != 0 {
		t.Error("reading should not be recorded on error")
	}
}

func TestFakePublisherPublishSystem(t *testing.T) {
	f := NewFakePublisher()

	events := []SystemEvent{
		{Timestamp: time.Now(), Event: "STARTUP", Retained: true},
		{Timestamp: time.Now(), Event: "HEARTBEAT"},
	}
	for _, e := range events {
		if err := f.PublishSystem(e); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	_, sys := f.Snapshot()
	if len(sys) != 2 {
		t.Fatalf("expected 2 system events, got %d", len(sys))
	}
	if !sys[0].Retained {
		t.Error("first event should have Retained=true")
	}
	if sys[1].Retained {
		t.Error("second event should have Retained=false")
	}
}

func TestFakePublisherPublishSystemError(t *testing.T) {
	f := NewFakePublisher()
	f.PublishSystemError = errors.New("broker down")

	if err := f.PublishSystem(SystemEvent{Event: "SHUTDOWN"}); err == nil {
		t.Error("expected error")
	}
	if len(f.SystemEvents) != 0 {
		t.Error("event should not be recorded on error")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.PublishReading(testReading(), "")
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()
	f.Connected = true

	f.Reset()

	if len(f.Readings) != 0 || len(f.Payloads) != 0 {
		t.Error("readings should be cleared")
	}
	if len(f.SystemEvents) != 0 || len(f.SystemPayloads) != 0 {
		t.Error("system events should be cleared")
	}
	if f.Closed || f.Connected {
		t.Error("flags should be cleared")
	}
}

func TestFakePublisherImplementsInterfaces(t *testing.T) {
	var _ Publisher = (*FakePublisher)(nil)
	var _ ConnectionStatus = (*FakePublisher)(nil)
	var _ Publisher = (*RealPublisher)(nil)
	var _ ConnectionStatus = (*RealPublisher)(nil)
}
