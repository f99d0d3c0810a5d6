package webhook

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/mamadbah2/freshtrack/internal/domain/models"
)

// Client exposes the alert delivery operation used by the scheduler.
type Client interface {
	SendAlert(ctx context.Context, alert models.Alert) error
}

// APIClient is a resty-backed implementation of Client.
type APIClient struct {
	httpClient *resty.Client
	url        string
}

// NewClient builds a webhook client posting alerts to the provided URL.
func NewClient(url string) *APIClient {
	restyClient := resty.New()
	restyClient.
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{
		httpClient: restyClient,
		url:        url,
	}
}

// errorBody captures whatever error shape the receiving endpoint returns.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SendAlert posts the alert payload and treats any non-2xx response as an error.
func (c *APIClient) SendAlert(ctx context.Context, alert models.Alert) error {
	apiErr := new(errorBody)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(alert).
		SetError(apiErr).
		Post(c.url)
	if err != nil {
		return fmt.Errorf("send expiry alert: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := apiErr.Error
		if message == "" {
			message = apiErr.Message
		}
		return fmt.Errorf("alert webhook error: code=%d, message=%s", resp.StatusCode(), message)
	}

	return nil
}
