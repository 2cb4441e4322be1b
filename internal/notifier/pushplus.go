package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"PriceSentinel/internal/model"
)

const defaultPushPlusEndpoint = "http://www.pushplus.plus/send"

// PushPlusNotifier sends HTML messages through the PushPlus relay.
type PushPlusNotifier struct {
	Token    string
	Endpoint string
	Client   *http.Client
}

// NewPushPlusNotifier creates a notifier with optional proxy support.
func NewPushPlusNotifier(token, endpoint, proxyURL string, timeout time.Duration) *PushPlusNotifier {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if endpoint == "" {
		endpoint = defaultPushPlusEndpoint
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PushPlusNotifier{
		Token:    token,
		Endpoint: endpoint,
		Client: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
	}
}

func (p *PushPlusNotifier) Name() string { return "pushplus" }

type pushPlusRequest struct {
	Token    string `json:"token"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Topic    string `json:"topic,omitempty"`
	Template string `json:"template"`
}

type pushPlusResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Send publishes msg to a PushPlus group topic. An empty topic sends to the
// token owner only.
func (p *PushPlusNotifier) Send(ctx context.Context, topic string, msg model.Message) error {
	if p.Token == "" {
		return ErrMissingCredential
	}

	body, err := json.Marshal(pushPlusRequest{
		Token:    p.Token,
		Title:    msg.Title,
		Content:  RenderHTML(msg),
		Topic:    topic,
		Template: "html",
	})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.Endpoint, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Backend: p.Name(), Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.Client.Do(req)
	if err != nil {
		return &DeliveryError{Backend: p.Name(), Err: err}
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 16<<10))
	if resp.StatusCode != http.StatusOK {
		return &DeliveryError{Backend: p.Name(), StatusCode: resp.StatusCode, Reason: string(respBody)}
	}

	var result pushPlusResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return &DeliveryError{Backend: p.Name(), Err: fmt.Errorf("decode response: %w", err)}
	}
	if result.Code != http.StatusOK {
		return &DeliveryError{Backend: p.Name(), Reason: fmt.Sprintf("code %d: %s", result.Code, result.Msg)}
	}
	return nil
}
