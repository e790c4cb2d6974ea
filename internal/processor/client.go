package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/domain"
	"github.com/AchrafBen7/BelDetailing-Backend-sub001/internal/logger"
)

// Client talks to the payment processor's REST API. It implements
// PaymentProcessor; all requests carry bearer auth and, for mutating calls,
// an Idempotency-Key header.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// paymentIntent is the processor's representation of an authorization or
// charge.
type paymentIntent struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	ClientSecret string `json:"client_secret"`
}

type transferObject struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type refundObject struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type apiError struct {
	ErrorInfo struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Authorize(ctx context.Context, amountCents int64, currency, payerRef, idemKey string) (*Authorization, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("customer", payerRef)
	form.Set("capture_method", "manual")
	form.Set("confirm", "true")

	var pi paymentIntent
	if err := c.post(ctx, "/v1/payment_intents", form, idemKey, &pi); err != nil {
		return nil, err
	}
	return &Authorization{Ref: pi.ID, Status: Status(pi.Status), ClientSecret: pi.ClientSecret}, nil
}

func (c *Client) Capture(ctx context.Context, ref, idemKey string) (Status, error) {
	var pi paymentIntent
	if err := c.post(ctx, "/v1/payment_intents/"+ref+"/capture", url.Values{}, idemKey, &pi); err != nil {
		return "", err
	}
	return Status(pi.Status), nil
}

func (c *Client) Refund(ctx context.Context, ref string, amountCents *int64, idemKey string) (Status, error) {
	form := url.Values{}
	form.Set("payment_intent", ref)
	if amountCents != nil {
		form.Set("amount", strconv.FormatInt(*amountCents, 10))
	}

	var rf refundObject
	if err := c.post(ctx, "/v1/refunds", form, idemKey, &rf); err != nil {
		return "", err
	}
	return Status(rf.Status), nil
}

func (c *Client) Transfer(ctx context.Context, amountCents int64, currency, destinationRef, sourceChargeRef, idemKey string) (string, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("destination", destinationRef)
	form.Set("source_transaction", sourceChargeRef)

	var tr transferObject
	if err := c.post(ctx, "/v1/transfers", form, idemKey, &tr); err != nil {
		return "", err
	}
	return tr.ID, nil
}

func (c *Client) RetrieveStatus(ctx context.Context, ref string) (Status, error) {
	var pi paymentIntent
	if err := c.get(ctx, "/v1/payment_intents/"+ref, &pi); err != nil {
		return "", err
	}
	return Status(pi.Status), nil
}

func (c *Client) CreateOffSessionPayment(ctx context.Context, amountCents int64, currency, payerRef, mandateRef, idemKey string) (*Authorization, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amountCents, 10))
	form.Set("currency", strings.ToLower(currency))
	form.Set("customer", payerRef)
	form.Set("payment_method", mandateRef)
	form.Set("off_session", "true")
	form.Set("confirm", "true")

	var pi paymentIntent
	if err := c.post(ctx, "/v1/payment_intents", form, idemKey, &pi); err != nil {
		return nil, err
	}
	return &Authorization{Ref: pi.ID, Status: Status(pi.Status), ClientSecret: pi.ClientSecret}, nil
}

func (c *Client) post(ctx context.Context, path string, form url.Values, idemKey string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if idemKey != "" {
		req.Header.Set("Idempotency-Key", idemKey)
	}
	return c.do(req, path, out)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, path, out)
}

func (c *Client) do(req *http.Request, op string, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	logger.ExternalServiceCall("processor", op)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Network failure or timeout: the outcome on the processor side is
		// unknown. Surfaced as transient; the caller's record status must
		// represent the ambiguity.
		logger.ExternalServiceResult("processor", op, err)
		return &domain.ProcessorTransientError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.ProcessorTransientError{Op: op, Err: err}
	}

	if resp.StatusCode >= 500 {
		logger.ExternalServiceResult("processor", op, fmt.Errorf("status %d", resp.StatusCode))
		return &domain.ProcessorTransientError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, body)}
	}
	if resp.StatusCode >= 400 {
		var apiErr apiError
		if unmarshalErr := json.Unmarshal(body, &apiErr); unmarshalErr != nil || apiErr.ErrorInfo.Code == "" {
			apiErr.ErrorInfo.Code = strconv.Itoa(resp.StatusCode)
			apiErr.ErrorInfo.Message = string(body)
		}
		permErr := &domain.ProcessorPermanentError{
			Op:     op,
			Code:   apiErr.ErrorInfo.Code,
			Detail: apiErr.ErrorInfo.Message,
		}
		logger.ExternalServiceResult("processor", op, permErr)
		return permErr
	}

	logger.ExternalServiceResult("processor", op, nil)
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode processor response: %w", err)
	}
	return nil
}
