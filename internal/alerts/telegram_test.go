package alerts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"condor-bot/internal/config"

	"go.uber.org/zap"
)

func TestSendDisabledIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	tg := newTelegram(config.TelegramConfig{Enabled: false}, zap.NewNop(), srv.URL, srv.Client())
	if err := tg.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if called {
		t.Fatal("disabled notifier must not call the API")
	}
}

func TestSendRequiresCredentials(t *testing.T) {
	tg := newTelegram(config.TelegramConfig{Enabled: true}, zap.NewNop(), telegramBaseURL, nil)
	if err := tg.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected error without token and chat id")
	}
}

func TestSendRejectsEmptyMessage(t *testing.T) {
	tg := newTelegram(config.TelegramConfig{
		Enabled: true, Token: "tok", ChatID: "42",
	}, zap.NewNop(), telegramBaseURL, nil)
	if err := tg.Send(context.Background(), "   "); err == nil {
		t.Fatal("expected error for blank message")
	}
}

func TestSendPostsPayload(t *testing.T) {
	var gotPath string
	var gotPayload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotPayload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tg := newTelegram(config.TelegramConfig{
		Enabled: true, Token: "tok", ChatID: "42",
	}, zap.NewNop(), srv.URL, srv.Client())
	if err := tg.Send(context.Background(), "position entered"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotPath != "/bottok/sendMessage" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotPayload["chat_id"] != "42" || gotPayload["text"] != "position entered" {
		t.Fatalf("payload = %v", gotPayload)
	}
}

func TestSendHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	tg := newTelegram(config.TelegramConfig{
		Enabled: true, Token: "tok", ChatID: "42",
	}, zap.NewNop(), srv.URL, srv.Client())
	if err := tg.Send(context.Background(), "hello"); err == nil {
		t.Fatal("expected error on http 401")
	}
}

func TestSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	tg := newTelegram(config.TelegramConfig{
		Enabled: true, Token: "tok", ChatID: "42",
	}, zap.NewNop(), srv.URL, srv.Client())
	err := tg.Send(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected error when the API reports ok=false")
	}
}
