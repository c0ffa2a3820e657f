// Пакет ledger отправляет зафиксированные приёмки во внешний журнал
// (Apps Script-эндпоинт). Успех — только HTTP 200 с "OK" в теле ответа.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"priemka/internal/constants"
	"priemka/internal/models"
)

// Client — HTTP-клиент журнала.
type Client struct {
	url    string
	client *http.Client
}

// NewClient создает клиент журнала.
func NewClient(url string) *Client {
	return &Client{
		url:    url,
		client: &http.Client{Timeout: constants.EXTERNAL_HTTP_TIMEOUT},
	}
}

type payload struct {
	Shop  string            `json:"shop"`
	Items []models.LineItem `json:"items"`
}

// Submit записывает приёмку в журнал. Любая транспортная ошибка, статус
// кроме 200 или тело без "OK" — это временная неудача: вызывающая сторона
// откатывает захват фиксации и повторяет позже.
func (c *Client) Submit(ctx context.Context, shop string, items []models.LineItem) error {
	body, err := json.Marshal(payload{Shop: shop, Items: items})
	if err != nil {
		return fmt.Errorf("ошибка сериализации приёмки: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("ошибка создания запроса к журналу: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ошибка отправки в журнал: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(respBody), "OK") {
		return fmt.Errorf("журнал отверг запись: статус %d, ответ: %.200s", resp.StatusCode, string(respBody))
	}
	return nil
}
