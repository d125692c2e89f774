package payments

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/connecta/collabo-backend/internal/collabo/domain"
)

// Flutterwave opens hosted checkout sessions and verifies their outcome.
type Flutterwave struct {
	BaseURL     string
	RedirectURL string
	HTTP        *http.Client
}

// NewFlutterwave authenticates every request with the secret key as a bearer token.
func NewFlutterwave(baseURL, secretKey, redirectURL string) *Flutterwave {
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: secretKey, TokenType: "Bearer"})
	httpClient := &http.Client{
		Timeout:   30 * time.Second,
		Transport: &oauth2.Transport{Source: src, Base: http.DefaultTransport},
	}
	return &Flutterwave{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		RedirectURL: redirectURL,
		HTTP:        httpClient,
	}
}

type customer struct {
	Email string `json:"email"`
}

type customizations struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type initializeRequest struct {
	TxRef          string            `json:"tx_ref"`
	Amount         float64           `json:"amount"`
	Currency       string            `json:"currency"`
	RedirectURL    string            `json:"redirect_url"`
	PaymentOptions string            `json:"payment_options"`
	Meta           map[string]string `json:"meta,omitempty"`
	Customer       customer          `json:"customer"`
	Customizations customizations    `json:"customizations"`
}

type envelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (f *Flutterwave) InitializePayment(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	body := initializeRequest{
		TxRef:          req.Reference,
		Amount:         req.Amount,
		Currency:       req.Currency,
		RedirectURL:    f.RedirectURL,
		PaymentOptions: "card",
		Meta:           req.Metadata,
		Customer:       customer{Email: req.Email},
		Customizations: customizations{Title: "Connecta Payment", Description: req.Description},
	}

	var data struct {
		Link string `json:"link"`
	}
	if err := f.do(ctx, http.MethodPost, "/payments", body, &data); err != nil {
		return nil, fmt.Errorf("flutterwave initialize: %w", err)
	}
	if data.Link == "" {
		return nil, fmt.Errorf("flutterwave initialize: empty checkout link")
	}
	return &domain.CheckoutSession{URL: data.Link, GatewayReference: req.Reference}, nil
}

func (f *Flutterwave) VerifyPayment(ctx context.Context, reference string) (*domain.PaymentVerification, error) {
	var data struct {
		TxRef    string  `json:"tx_ref"`
		Status   string  `json:"status"`
		Amount   float64 `json:"amount"`
		Currency string  `json:"currency"`
	}
	path := "/transactions/verify_by_reference?tx_ref=" + url.QueryEscape(reference)
	if err := f.do(ctx, http.MethodGet, path, nil, &data); err != nil {
		return nil, fmt.Errorf("flutterwave verify: %w", err)
	}

	status := domain.PaymentPending
	switch data.Status {
	case "successful":
		status = domain.PaymentSuccessful
	case "failed", "cancelled":
		status = domain.PaymentFailed
	}
	return &domain.PaymentVerification{
		Reference: data.TxRef,
		Status:    status,
		Amount:    data.Amount,
		Currency:  data.Currency,
	}, nil
}

func (f *Flutterwave) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, f.BaseURL+path, body)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := f.HTTP.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 || env.Status != "success" {
		return fmt.Errorf("gateway error (status %d): %s", resp.StatusCode, env.Message)
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decode data: %w", err)
		}
	}
	return nil
}
