package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"PriceSentinel/internal/model"
)

func TestPushPlusNotifier_Send(t *testing.T) {
	msg := model.Message{Title: "title", Headline: "head", Theme: model.ThemePulseBlue}

	t.Run("missing_token", func(t *testing.T) {
		p := NewPushPlusNotifier("", "http://127.0.0.1:1", "", 0)
		if err := p.Send(context.Background(), "topic", msg); !errors.Is(err, ErrMissingCredential) {
			t.Errorf("expected ErrMissingCredential, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		var got pushPlusRequest
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				t.Errorf("method = %s", r.Method)
			}
			_ = json.NewDecoder(r.Body).Decode(&got)
			_, _ = w.Write([]byte(`{"code":200,"msg":"请求成功","data":"abc"}`))
		}))
		defer ts.Close()

		p := NewPushPlusNotifier("tok", ts.URL, "", 0)
		if err := p.Send(context.Background(), "gold_pro_trading", msg); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Token != "tok" || got.Topic != "gold_pro_trading" || got.Template != "html" || got.Title != "title" {
			t.Errorf("unexpected request %+v", got)
		}
		if got.Content == "" {
			t.Error("expected rendered content")
		}
	})

	t.Run("relay_rejects", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"code":903,"msg":"无效的用户token"}`))
		}))
		defer ts.Close()

		p := NewPushPlusNotifier("bad", ts.URL, "", 0)
		err := p.Send(context.Background(), "", msg)
		var de *DeliveryError
		if !errors.As(err, &de) {
			t.Fatalf("expected DeliveryError, got %v", err)
		}
	})

	t.Run("server_error", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer ts.Close()

		p := NewPushPlusNotifier("tok", ts.URL, "", 0)
		err := p.Send(context.Background(), "", msg)
		var de *DeliveryError
		if !errors.As(err, &de) || de.StatusCode != http.StatusBadGateway {
			t.Fatalf("expected 502 DeliveryError, got %v", err)
		}
	})
}
