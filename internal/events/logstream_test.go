package events

import (
	"testing"
	"time"

	"github.com/smazurov/kbglow/internal/logging"
)

// The daemon forwards every new log entry onto the bus so the log
// stream endpoint serves live entries after its ring buffer replay.
func TestLogEntriesReachBus(t *testing.T) {
	logging.Initialize(logging.Config{Level: "info", Format: "text"})

	bus := New()
	received := make(chan LogEntryEvent, 16)
	unsub := bus.Subscribe(func(e LogEntryEvent) { received <- e })
	defer unsub()

	logging.SetLogCallback(func(entry logging.LogEntry) {
		bus.Publish(LogEntryEvent{
			Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
			Level:      entry.Level,
			Module:     entry.Module,
			Message:    entry.Message,
			Attributes: entry.Attributes,
		})
	})
	defer logging.SetLogCallback(nil)

	logging.GetLogger("bridge").Info("backlight ready", "zones", 4)

	select {
	case e := <-received:
		if e.Module != "bridge" || e.Message != "backlight ready" {
			t.Errorf("unexpected event: %+v", e)
		}
		if e.Level != "info" {
			t.Errorf("level = %q, want info", e.Level)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("log entry never reached the bus")
	}
}
