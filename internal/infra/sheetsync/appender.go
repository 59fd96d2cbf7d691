package sheetsync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const appendTimeout = 10 * time.Second

// RowAppender 外部報表的寫入介面
type RowAppender interface {
	AppendRows(ctx context.Context, rows [][]string) error
}

// WebhookAppender 透過 HTTP webhook 把訂單列寫到外部報表
// 報表後端 (Apps Script / 自建 relay) 收 {"values": [[...], ...]}
type WebhookAppender struct {
	url    string
	client *http.Client
}

func NewWebhookAppender(url string) *WebhookAppender {
	return &WebhookAppender{
		url:    url,
		client: &http.Client{Timeout: appendTimeout},
	}
}

func (a *WebhookAppender) AppendRows(ctx context.Context, rows [][]string) error {
	payload := map[string]interface{}{"values": rows}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("append rows request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("append rows returned status %d", resp.StatusCode)
	}
	return nil
}

var _ RowAppender = (*WebhookAppender)(nil)
