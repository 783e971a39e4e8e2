package events

import (
	"context"
	"log/slog"
	"sync"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestNewEvent(t *testing.T) {
	data := AssessmentEvent{AssessmentID: 42, Title: "Final Exam", Status: "active"}

	event := NewEvent(EventAssessmentPublished, data)

	if event.ID == "" {
		t.Error("event ID should be generated")
	}
	if event.Type != EventAssessmentPublished {
		t.Errorf("Type = %q, want %q", event.Type, EventAssessmentPublished)
	}
	if event.Source != "assessment-service" {
		t.Errorf("Source = %q, want assessment-service", event.Source)
	}
	if event.Version != "1.0" {
		t.Errorf("Version = %q, want 1.0", event.Version)
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp should be set")
	}

	payload, ok := event.Data.(AssessmentEvent)
	if !ok {
		t.Fatalf("Data has type %T, want AssessmentEvent", event.Data)
	}
	if payload.AssessmentID != 42 {
		t.Errorf("AssessmentID = %d, want 42", payload.AssessmentID)
	}
}

func TestNewEventUniqueIDs(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		event := NewEvent(EventSubmissionStarted, nil)
		if seen[event.ID] {
			t.Fatalf("duplicate event ID %q", event.ID)
		}
		seen[event.ID] = true
	}
}

func TestMockEventPublisher(t *testing.T) {
	publisher := NewMockEventPublisher(testLogger())
	ctx := context.Background()

	if err := publisher.Publish(ctx, NewEvent(EventSubmissionStarted, nil)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := publisher.Publish(ctx, NewEvent(EventSubmissionGraded, nil)); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	events := publisher.GetPublishedEvents()
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != EventSubmissionStarted || events[1].Type != EventSubmissionGraded {
		t.Errorf("events out of order: %q, %q", events[0].Type, events[1].Type)
	}

	publisher.ClearEvents()
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Error("ClearEvents should drop recorded events")
	}

	if err := publisher.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestMockEventPublisherSnapshotIsolation(t *testing.T) {
	publisher := NewMockEventPublisher(testLogger())
	ctx := context.Background()

	_ = publisher.Publish(ctx, NewEvent(EventSubmissionStarted, nil))
	snapshot := publisher.GetPublishedEvents()
	_ = publisher.Publish(ctx, NewEvent(EventSubmissionSubmitted, nil))

	if len(snapshot) != 1 {
		t.Errorf("snapshot grew to %d events; it must be a copy", len(snapshot))
	}
}

func TestMockEventPublisherConcurrentPublish(t *testing.T) {
	publisher := NewMockEventPublisher(testLogger())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = publisher.Publish(ctx, NewEvent(EventSubmissionSubmitted, nil))
		}()
	}
	wg.Wait()

	if got := len(publisher.GetPublishedEvents()); got != 20 {
		t.Errorf("got %d events, want 20", got)
	}
}
