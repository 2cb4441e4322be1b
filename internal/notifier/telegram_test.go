package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"PriceSentinel/internal/model"
)

func TestTelegramNotifier_Send(t *testing.T) {
	msg := model.Message{Title: "gold", Fields: []model.Field{{Label: "当前价格", Value: "480"}}}

	t.Run("missing_config", func(t *testing.T) {
		n := NewTelegramNotifier("", "", "", 0)
		if err := n.Send(context.Background(), "", msg); !errors.Is(err, ErrMissingCredential) {
			t.Errorf("expected ErrMissingCredential, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		var payload map[string]string
		var path string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path = r.URL.Path
			_ = json.NewDecoder(r.Body).Decode(&payload)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer ts.Close()

		n := NewTelegramNotifier("tok", "42", "", 0)
		n.BaseURL = ts.URL
		if err := n.Send(context.Background(), "gold_alerts", msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if path != "/bottok/sendMessage" {
			t.Errorf("path = %q", path)
		}
		if payload["chat_id"] != "42" || payload["parse_mode"] != "HTML" {
			t.Errorf("unexpected payload %v", payload)
		}
		if !strings.Contains(payload["text"], "#gold_alerts") {
			t.Errorf("expected topic hashtag in %q", payload["text"])
		}
	})

	t.Run("server_error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"ok":false}`))
		}))
		defer ts.Close()

		n := NewTelegramNotifier("tok", "42", "", 0)
		n.BaseURL = ts.URL
		var de *DeliveryError
		if err := n.Send(context.Background(), "", msg); !errors.As(err, &de) {
			t.Errorf("expected DeliveryError, got %v", err)
		}
	})

	t.Run("transport_error_hides_token", func(t *testing.T) {
		const token = "123456:SECRET-BOT-TOKEN"
		n := NewTelegramNotifier(token, "42", "", 0)
		n.BaseURL = "http://127.0.0.1:1"
		err := n.Send(context.Background(), "", msg)
		var de *DeliveryError
		if !errors.As(err, &de) {
			t.Fatalf("expected DeliveryError, got %v", err)
		}
		if strings.Contains(err.Error(), token) {
			t.Errorf("error leaks bot token: %v", err)
		}
	})

	t.Run("topic_escaped", func(t *testing.T) {
		var payload map[string]string
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewDecoder(r.Body).Decode(&payload)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer ts.Close()

		n := NewTelegramNotifier("tok", "42", "", 0)
		n.BaseURL = ts.URL
		if err := n.Send(context.Background(), "gold<fx>&co", msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.HasSuffix(payload["text"], "#gold&lt;fx&gt;&amp;co") {
			t.Errorf("topic not escaped in %q", payload["text"])
		}
	})
}
