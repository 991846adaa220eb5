package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"smartcharge/backend/services/reservation-service/internal/models"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func sampleEvent() Event {
	res := &models.Reservation{ID: 9, UserID: 42, StationID: 3, Hour: "23:00 - 00:00", IsGreen: true, EarnedCoins: 50, Status: models.StatusConfirmed}
	ledger := &models.LedgerSnapshot{ID: 42, Coins: 50, CO2Saved: 2.5, XP: 150}
	return New(TypeReservationCreated, time.Date(2026, 3, 1, 22, 10, 0, 0, time.UTC), res, ledger)
}

func TestKafkaPublisherKeysByUser(t *testing.T) {
	writer := &fakeWriter{}
	pub := newKafkaPublisherWithWriter(writer, "reservations", zap.NewNop())

	event := sampleEvent()
	if err := pub.Publish(context.Background(), event); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(writer.msgs) != 1 {
		t.Fatalf("expected one message, got %d", len(writer.msgs))
	}
	msg := writer.msgs[0]
	if string(msg.Key) != "42" {
		t.Fatalf("expected user key 42, got %q", msg.Key)
	}
	var decoded Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.ID != event.ID || decoded.Type != TypeReservationCreated || decoded.Ledger.Coins != 50 {
		t.Fatalf("unexpected payload: %+v", decoded)
	}
	if len(msg.Headers) != 2 || string(msg.Headers[0].Value) != TypeReservationCreated {
		t.Fatalf("unexpected headers: %+v", msg.Headers)
	}

	if err := pub.Close(); err != nil || !writer.closed {
		t.Fatalf("expected writer to be closed, err=%v", err)
	}
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	pub := newKafkaPublisherWithWriter(&fakeWriter{err: boom}, "reservations", zap.NewNop())
	if err := pub.Publish(context.Background(), sampleEvent()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}

func TestNewKafkaPublisherValidates(t *testing.T) {
	if _, err := NewKafkaPublisher(KafkaConfig{Brokers: []string{"localhost:9092"}}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for empty topic")
	}
	if _, err := NewKafkaPublisher(KafkaConfig{Topic: "reservations"}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for missing brokers")
	}
}

func TestMultiDeliversToAllAndJoinsErrors(t *testing.T) {
	var got []string
	record := func(name string, err error) Publisher {
		return PublisherFunc(func(_ context.Context, e Event) error {
			got = append(got, name+":"+e.Type)
			return err
		})
	}
	boom := errors.New("boom")
	multi := Multi{record("a", nil), nil, record("b", boom), record("c", nil)}

	err := multi.Publish(context.Background(), sampleEvent())
	if !errors.Is(err, boom) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if len(got) != 3 || got[2] != "c:"+TypeReservationCreated {
		t.Fatalf("expected every publisher to run, got %v", got)
	}
}

func TestNewAssignsUniqueIDs(t *testing.T) {
	a, b := sampleEvent(), sampleEvent()
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
	if a.UserID != 42 {
		t.Fatalf("expected user id from reservation, got %d", a.UserID)
	}
}
