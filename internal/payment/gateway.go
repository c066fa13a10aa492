package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrGateway marks transient provider or transport faults. The order and its
// stock reservation are already committed when session creation fails, so
// callers retry the session only.
var ErrGateway = errors.New("payment gateway error")

// SessionItem is one order line as the gateway wants it: snapshot name and
// unit amount in minor currency units.
type SessionItem struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unit_amount"`
	Quantity   int    `json:"quantity"`
}

type SessionRequest struct {
	OrderID    int           `json:"order_id"`
	Currency   string        `json:"currency"`
	SuccessURL string        `json:"success_url"`
	CancelURL  string        `json:"cancel_url"`
	Items      []SessionItem `json:"line_items"`
}

// Session is the gateway's handle for a started payment. ID doubles as the
// order's payment reference until the completion event overwrites it.
type Session struct {
	ID          string `json:"id"`
	RedirectURL string `json:"redirect_url"`
}

// Gateway starts payment sessions with the external provider.
type Gateway interface {
	CreateSession(ctx context.Context, req SessionRequest) (Session, error)
}

// HTTPGateway talks to the provider's REST API.
type HTTPGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewHTTPGateway(baseURL, apiKey string) *HTTPGateway {
	return &HTTPGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (g *HTTPGateway) CreateSession(ctx context.Context, req SessionRequest) (Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return Session{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return Session{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	res, err := g.client.Do(httpReq)
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return Session{}, fmt.Errorf("%w: status %d", ErrGateway, res.StatusCode)
	}

	var session Session
	if err := json.NewDecoder(res.Body).Decode(&session); err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if session.ID == "" {
		return Session{}, fmt.Errorf("%w: empty session id", ErrGateway)
	}
	return session, nil
}
