package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/ParleyLabs/chatdeck-go/internal/application/services"
)

func TestWindowFromDates(t *testing.T) {
	w, err := windowFromDates("2025-06-01", "2025-06-07")
	if err != nil {
		t.Fatalf("windowFromDates: %v", err)
	}

	wantStart := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if !w.Start.Equal(wantStart) {
		t.Errorf("Start = %v, want %v", w.Start, wantStart)
	}

	// The end date is inclusive, so the window runs to the next midnight.
	wantEnd := time.Date(2025, 6, 8, 0, 0, 0, 0, time.UTC)
	if !w.End.Equal(wantEnd) {
		t.Errorf("End = %v, want %v", w.End, wantEnd)
	}
}

func TestWindowFromDatesSingleDay(t *testing.T) {
	w, err := windowFromDates("2025-06-01", "2025-06-01")
	if err != nil {
		t.Fatalf("windowFromDates: %v", err)
	}
	if w.IsEmpty() {
		t.Error("single-day window should not be empty")
	}
}

func TestWindowFromDatesRejections(t *testing.T) {
	tests := []struct {
		name      string
		startDate string
		endDate   string
	}{
		{"missing start", "", "2025-06-07"},
		{"missing end", "2025-06-01", ""},
		{"bad format", "06/01/2025", "2025-06-07"},
		{"inverted", "2025-06-07", "2025-06-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := windowFromDates(tt.startDate, tt.endDate); err != services.ErrInvalidWindow {
				t.Errorf("err = %v, want ErrInvalidWindow", err)
			}
		})
	}
}

func TestStatusForServiceError(t *testing.T) {
	if got := statusForServiceError(services.ErrInvalidWindow); got != http.StatusBadRequest {
		t.Errorf("ErrInvalidWindow status = %d, want 400", got)
	}
	if got := statusForServiceError(services.ErrMissingTenant); got != http.StatusNotFound {
		t.Errorf("ErrMissingTenant status = %d, want 404", got)
	}
}
