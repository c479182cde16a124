package flows

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"petsitter/internal/coordinator/core"
	"petsitter/pkg/client"
	"petsitter/pkg/model"
)

func TestRequestOverviewFlow(t *testing.T) {
	now := time.Now().UTC()
	request := &model.CareRequest{
		ID:        "request-1",
		Title:     "Weekend cat sitting",
		CareType:  model.CarePetSitting,
		StartDate: now.AddDate(0, 0, 7),
		EndDate:   now.AddDate(0, 0, 10),
		Status:    model.RequestOpen,
		OwnerID:   "owner-1",
		PetID:     "pet-1",
	}
	applications := []*model.Booking{
		{ID: "booking-1", RequestID: "request-1", SitterID: "sitter-1", OwnerID: "owner-1", Status: model.BookingPending},
		{ID: "booking-2", RequestID: "request-1", SitterID: "sitter-2", OwnerID: "owner-1", Status: model.BookingPending},
		{ID: "booking-3", RequestID: "request-1", SitterID: "sitter-3", OwnerID: "owner-1", Status: model.BookingRejected},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/requests/id/request-1", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, request)
	})
	mux.HandleFunc("/api/v1/bookings/search", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("request_id"); got != "request-1" {
			t.Errorf("expected request-1 filter, got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data":        applications,
			"total_count": len(applications),
			"limit":       100,
			"offset":      0,
		})
	})
	mux.HandleFunc("/api/v1/sitters/sitter-1/availability", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]bool{"available": true})
	})
	mux.HandleFunc("/api/v1/sitters/sitter-2/availability", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]bool{"available": false})
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	apiClient := client.NewClient()
	apiClient.SetBookings(server.URL)
	apiClient.SetRequests(server.URL)

	engine := core.NewEngine(RequestOverview{})
	ctx := core.NewFlowContext(map[string]any{
		"request_id": "request-1",
	}, apiClient, testLogger())

	if err := engine.Run("request_overview", ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gotRequest := ctx.Output["request"].(*model.CareRequest)
	if gotRequest.ID != "request-1" {
		t.Errorf("unexpected request: %+v", gotRequest)
	}

	summaries := ctx.Output["applications"].([]*ApplicationSummary)
	if len(summaries) != 3 {
		t.Fatalf("expected 3 applications, got %d", len(summaries))
	}

	bySitter := map[string]*ApplicationSummary{}
	for _, s := range summaries {
		bySitter[s.Booking.SitterID] = s
	}
	if !bySitter["sitter-1"].SitterAvailable {
		t.Error("expected sitter-1 to be available")
	}
	if bySitter["sitter-2"].SitterAvailable {
		t.Error("expected sitter-2 to be unavailable")
	}
	if bySitter["sitter-3"].SitterAvailable {
		t.Error("expected rejected application to not report availability")
	}
}

func TestRequestOverviewFlow_MissingInput(t *testing.T) {
	engine := core.NewEngine(RequestOverview{})
	ctx := core.NewFlowContext(map[string]any{}, nil, testLogger())

	if err := engine.Run("request_overview", ctx); err == nil {
		t.Error("expected error for missing request_id")
	}
}
