package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestConfigured(t *testing.T) {
	t.Parallel()

	if NewNotifier("", "").Configured() {
		t.Fatal("missing credentials must report unconfigured")
	}
	if NewNotifier("token", "").Configured() {
		t.Fatal("missing chat id must report unconfigured")
	}
	if !NewNotifier("token", "42").Configured() {
		t.Fatal("full credentials must report configured")
	}
}

func TestSendPostsForm(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotForm map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotPath = r.URL.Path
		gotForm = map[string]string{
			"chat_id":    r.PostForm.Get("chat_id"),
			"text":       r.PostForm.Get("text"),
			"parse_mode": r.PostForm.Get("parse_mode"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	n := NewNotifier("secret-token", "42")
	n.apiBase = server.URL

	if err := n.Send(context.Background(), "🏠 <b>兩房</b>"); err != nil {
		t.Fatalf("Send: %v", err)
	}

	if gotPath != "/botsecret-token/sendMessage" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotForm["chat_id"] != "42" {
		t.Fatalf("unexpected chat_id: %s", gotForm["chat_id"])
	}
	if gotForm["text"] != "🏠 <b>兩房</b>" {
		t.Fatalf("unexpected text: %s", gotForm["text"])
	}
	if gotForm["parse_mode"] != "HTML" {
		t.Fatalf("unexpected parse_mode: %s", gotForm["parse_mode"])
	}
}

func TestSendSurfacesAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"ok":false,"description":"Bad Request"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	n := NewNotifier("token", "42")
	n.apiBase = server.URL

	if err := n.Send(context.Background(), "x"); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}

func TestSendUnconfigured(t *testing.T) {
	t.Parallel()

	if err := NewNotifier("", "").Send(context.Background(), "x"); err == nil {
		t.Fatal("expected error when unconfigured")
	}
}
