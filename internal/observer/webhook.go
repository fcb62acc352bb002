// internal/observer/webhook.go
package observer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// WebhookObserver 是一个具体的观察者，把每次变化以 JSON 形式 POST 到一个 URL
type WebhookObserver struct {
	url     string
	client  *http.Client
	timeout time.Duration
}

// NewWebhookObserver 创建一个 Webhook 观察者，client 通常来自 client.GetClient()
func NewWebhookObserver(url string, client *http.Client) *WebhookObserver {
	return &WebhookObserver{
		url:     url,
		client:  client,
		timeout: 5 * time.Second,
	}
}

// Name 返回观察者名称
func (w *WebhookObserver) Name() string {
	return "webhook"
}

// Update 实现了 Observer 接口。回调是同步的，所以每次请求都带超时。
func (w *WebhookObserver) Update(n Notification) error {
	body, err := n.Record().Marshal()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("无法创建 webhook 请求: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook 请求失败: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook 返回了非预期的状态码: %s", resp.Status)
	}
	return nil
}
