package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/veloxhost/dashboard-system/internal/model"
)

func TestGetProfile_OK(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Fatalf("method = %s, want GET", r.Method)
		}
		if r.URL.Path != "/api/profiles/42" {
			t.Fatalf("path = %s, want /api/profiles/42", r.URL.Path)
		}

		resp := model.Profile{
			UserID:      42,
			DisplayName: "Alex",
			Email:       "alex@example.com",
			Preferences: model.NotificationPreferences{
				EmailAlerts:     true,
				ServiceUpdates:  true,
				ExpiryReminders: false,
				Marketing:       true,
			},
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			t.Fatalf("encode: %v", err)
		}
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := client.GetProfile(ctx, 42)
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if res == nil || res.UserID != 42 || res.Email != "alex@example.com" {
		t.Fatalf("unexpected response: %+v", res)
	}
	if !res.Preferences.Marketing {
		t.Fatalf("preferences not decoded: %+v", res.Preferences)
	}
}

func TestGetProfile_NotFound(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	res, err := client.GetProfile(ctx, 7)
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if res != nil {
		t.Fatalf("expected nil profile for 404, got %+v", res)
	}
}

func TestGetProfile_RetriesServerErrors(t *testing.T) {
	attempts := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(model.Profile{UserID: 7, Email: "x@example.com"})
	}))
	defer ts.Close()

	client := NewClient(ts.URL)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	res, err := client.GetProfile(ctx, 7)
	if err != nil {
		t.Fatalf("GetProfile error: %v", err)
	}
	if res == nil || res.UserID != 7 {
		t.Fatalf("unexpected response after retry: %+v", res)
	}
	if attempts < 2 {
		t.Fatalf("attempts = %d, want at least 2", attempts)
	}
}

func TestGetProfile_NotConfigured(t *testing.T) {
	client := &Client{}

	_, err := client.GetProfile(context.Background(), 1)
	if err == nil {
		t.Fatalf("expected error for unconfigured client")
	}
}
