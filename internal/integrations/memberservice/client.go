package memberservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/GMS-ClassBookingService/internal/domain"
)

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Client клиент для работы с MemberService
// Отдает снимок активных абонементов клиента вместе с правилами доступа тарифов
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        Logger
}

// NewClient создает новый экземпляр клиента MemberService
func NewClient(baseURL string, timeout time.Duration, log Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// GetClientMemberships получает активные абонементы клиента в зале
// Срез делается на момент запроса: истекшие и замороженные абонементы не приходят
func (c *Client) GetClientMemberships(ctx context.Context, gymID, clientID int64) (*domain.ClientMemberships, error) {
	url := fmt.Sprintf("%s/internal/gyms/%d/clients/%d/memberships", c.baseURL, gymID, clientID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrInternal, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to execute request: %v", ErrInternal, err)
	}
	defer resp.Body.Close()

	// Обработка статус-кодов
	switch resp.StatusCode {
	case http.StatusOK:
		// Продолжаем обработку
	case http.StatusBadRequest:
		return nil, fmt.Errorf("%w: invalid gym or client ID format", ErrInvalidResponse)
	case http.StatusNotFound:
		return nil, ErrClientNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("%w: unexpected status code %d: %s", ErrInvalidResponse, resp.StatusCode, string(body))
	}

	var payload clientMembershipsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrInvalidResponse, err)
	}

	return payload.toDomain(), nil
}

// GetClientMembershipsWithGracefulDegradation получает абонементы клиента с graceful degradation
// При недоступности MemberService возвращает ErrServiceDegraded - вызывающий код
// может продолжить без VIP-привилегий, но проверку лимитов так подменять нельзя
func (c *Client) GetClientMembershipsWithGracefulDegradation(ctx context.Context, gymID, clientID int64) (*domain.ClientMemberships, error) {
	memberships, err := c.GetClientMemberships(ctx, gymID, clientID)
	if err != nil {
		// Бизнес-ошибку пробрасываем дальше
		if err == ErrClientNotFound {
			c.log.Info("No memberships found for client=%d in gym=%d", clientID, gymID)
			return nil, err
		}

		// Для всех остальных ошибок (недоступность сервиса, timeout, ошибки парсинга)
		// применяем graceful degradation
		c.log.Error("MemberService unavailable, applying graceful degradation for client=%d: %v", clientID, err)
		return nil, fmt.Errorf("%w: client=%d, error=%v", ErrServiceDegraded, clientID, err)
	}

	return memberships, nil
}
