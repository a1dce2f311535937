package repository

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"HashArb/internal/domain/models"
	pkghttp "HashArb/pkg/http"
)

const (
	orderPath   = "/main/api/v2/hashpower/order"
	accountPath = "/main/api/v2/accounting/account2/BTC"
	depositPath = "/main/api/v2/accounting/transfer"
)

// NiceHashConfig carries the marketplace API credentials.
type NiceHashConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
	OrgID     string
}

// signer produces the authentication headers the marketplace API expects:
// an HMAC-SHA256 over the request identity, keyed by the API secret.
type signer struct {
	cfg NiceHashConfig
}

func (s *signer) headers(method, path, query string, body []byte) map[string]string {
	ts := strconv.FormatInt(time.Now().UnixMilli(), 10)
	nonce := uuid.NewString()

	mac := hmac.New(sha256.New, []byte(s.cfg.APISecret))
	for i, part := range [][]byte{
		[]byte(s.cfg.APIKey),
		[]byte(ts),
		[]byte(nonce),
		nil,
		[]byte(s.cfg.OrgID),
		nil,
		[]byte(method),
		[]byte(path),
		[]byte(query),
	} {
		if i > 0 {
			mac.Write([]byte{0})
		}
		mac.Write(part)
	}
	if len(body) > 0 {
		mac.Write([]byte{0})
		mac.Write(body)
	}

	return map[string]string{
		"X-Time":            ts,
		"X-Nonce":           nonce,
		"X-Organization-Id": s.cfg.OrgID,
		"X-Request-Id":      uuid.NewString(),
		"X-Auth":            s.cfg.APIKey + ":" + hex.EncodeToString(mac.Sum(nil)),
	}
}

// NiceHashExchange places and maintains hash-power orders over the
// marketplace REST API.
type NiceHashExchange struct {
	cfg    NiceHashConfig
	client *pkghttp.Client
	sign   *signer
}

func NewNiceHashExchange(cfg NiceHashConfig) *NiceHashExchange {
	return &NiceHashExchange{
		cfg:    cfg,
		client: pkghttp.NewClient(pkghttp.WithTimeout(15 * time.Second)),
		sign:   &signer{cfg: cfg},
	}
}

func (e *NiceHashExchange) HasCredentials() bool {
	return e.cfg.APIKey != "" && e.cfg.APISecret != "" && e.cfg.OrgID != ""
}

type createOrderRequest struct {
	Market    string  `json:"market"`
	Algorithm string  `json:"algorithm"`
	Price     float64 `json:"price"`
	Amount    float64 `json:"amount"`
	Limit     float64 `json:"limit"`
	Type      string  `json:"type"`
}

type orderResponse struct {
	ID string `json:"id"`
}

func (e *NiceHashExchange) CreateOrder(ctx context.Context, order *models.Order) (string, error) {
	body := createOrderRequest{
		Market:    order.Market,
		Algorithm: order.Algorithm,
		Price:     order.Price,
		Amount:    order.Amount,
		Limit:     order.Speed,
		Type:      "STANDARD",
	}
	var resp orderResponse
	if err := e.send(ctx, pkghttp.MethodPost, orderPath, body, &resp); err != nil {
		return "", fmt.Errorf("create order %s: %w", order.Algorithm, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("create order %s: empty order id", order.Algorithm)
	}
	return resp.ID, nil
}

func (e *NiceHashExchange) UpdateOrderPrice(ctx context.Context, orderID string, price float64) error {
	path := orderPath + "/" + orderID + "/updatePriceAndLimit"
	body := map[string]float64{"price": price}
	if err := e.send(ctx, pkghttp.MethodPost, path, body, nil); err != nil {
		return fmt.Errorf("update order %s: %w", orderID, err)
	}
	return nil
}

func (e *NiceHashExchange) CancelOrder(ctx context.Context, orderID string) error {
	path := orderPath + "/" + orderID
	if err := e.send(ctx, pkghttp.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("cancel order %s: %w", orderID, err)
	}
	return nil
}

func (e *NiceHashExchange) send(ctx context.Context, method, path string, body, dest interface{}) error {
	var raw []byte
	if body != nil {
		var err error
		raw, err = encodeBody(body)
		if err != nil {
			return err
		}
	}
	opts := &pkghttp.RequestOptions{
		Method:  method,
		URL:     e.cfg.BaseURL + path,
		Headers: e.sign.headers(method, path, "", raw),
	}
	if raw != nil {
		opts.Body = raw
		opts.Headers["Content-Type"] = "application/json"
	}
	return e.client.SendAndParse(ctx, opts, dest)
}

// NiceHashWallet reads and tops up the BTC funding account.
type NiceHashWallet struct {
	cfg    NiceHashConfig
	client *pkghttp.Client
	sign   *signer
}

func NewNiceHashWallet(cfg NiceHashConfig) *NiceHashWallet {
	return &NiceHashWallet{
		cfg:    cfg,
		client: pkghttp.NewClient(pkghttp.WithTimeout(15 * time.Second)),
		sign:   &signer{cfg: cfg},
	}
}

type accountResponse struct {
	Available float64 `json:"available,string"`
}

func (w *NiceHashWallet) Balance(ctx context.Context) (float64, error) {
	var resp accountResponse
	err := w.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:  pkghttp.MethodGet,
		URL:     w.cfg.BaseURL + accountPath,
		Headers: w.sign.headers(pkghttp.MethodGet, accountPath, "", nil),
	}, &resp)
	if err != nil {
		return 0, fmt.Errorf("account balance: %w", err)
	}
	return resp.Available, nil
}

// Recharge moves funds from the organization's funding account into the
// trading account.
func (w *NiceHashWallet) Recharge(ctx context.Context, amount float64) error {
	body, err := encodeBody(map[string]interface{}{
		"currency": "BTC",
		"amount":   strconv.FormatFloat(amount, 'f', -1, 64),
	})
	if err != nil {
		return err
	}
	headers := w.sign.headers(pkghttp.MethodPost, depositPath, "", body)
	headers["Content-Type"] = "application/json"
	err = w.client.SendAndParse(ctx, &pkghttp.RequestOptions{
		Method:  pkghttp.MethodPost,
		URL:     w.cfg.BaseURL + depositPath,
		Headers: headers,
		Body:    body,
	}, nil)
	if err != nil {
		return fmt.Errorf("transfer %.8f BTC: %w", amount, err)
	}
	return nil
}
