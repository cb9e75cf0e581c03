// Package momo is a minimal HTTP client for the MoMo v2 payment gateway
// (captureWallet flow) and its IPN callback.
package momo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/medibook/medibook_backend/config"
	"github.com/medibook/medibook_backend/pkg/crypto"
)

var (
	ErrNotConfigured      = errors.New("momo: partner credentials are not configured")
	ErrInvalidSignature   = errors.New("momo: invalid signature")
	ErrUnexpectedResponse = errors.New("momo: unexpected response from gateway")
)

// ResultSuccess is the resultCode of a successful create or a paid IPN.
const ResultSuccess = 0

type Config struct {
	Endpoint    string
	PartnerCode string
	AccessKey   string
	SecretKey   string
	RedirectURL string
	IPNURL      string
	RequestType string
	Lang        string
	Timeout     time.Duration
}

func FromCentralConfig(c config.MoMoConfig) Config {
	cfg := Config{
		Endpoint:    strings.TrimRight(c.Endpoint, "/"),
		PartnerCode: c.PartnerCode,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		RedirectURL: c.RedirectURL,
		IPNURL:      c.IPNURL,
		RequestType: c.RequestType,
		Lang:        c.Lang,
		Timeout:     time.Duration(c.TimeoutSeconds) * time.Second,
	}
	if cfg.RequestType == "" {
		cfg.RequestType = "captureWallet"
	}
	if cfg.Lang == "" {
		cfg.Lang = "vi"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return cfg
}

// CreateRequest is the body POSTed to /create.
type CreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	Amount      int64  `json:"amount"`
	OrderID     string `json:"orderId"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IPNURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	AutoCapture bool   `json:"autoCapture"`
	Signature   string `json:"signature"`
}

// CreateResponse is returned to the frontend as-is.
type CreateResponse struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	ResponseTime int64  `json:"responseTime"`
	Message      string `json:"message"`
	ResultCode   int    `json:"resultCode"`
	PayURL       string `json:"payUrl"`
	Deeplink     string `json:"deeplink,omitempty"`
	QRCodeURL    string `json:"qrCodeUrl,omitempty"`
}

// IPN is the gateway's server-to-server payment notification.
type IPN struct {
	PartnerCode  string `json:"partnerCode"`
	OrderID      string `json:"orderId"`
	RequestID    string `json:"requestId"`
	Amount       int64  `json:"amount"`
	OrderInfo    string `json:"orderInfo"`
	OrderType    string `json:"orderType"`
	TransID      int64  `json:"transId"`
	ResultCode   int    `json:"resultCode"`
	Message      string `json:"message"`
	PayType      string `json:"payType"`
	ResponseTime int64  `json:"responseTime"`
	ExtraData    string `json:"extraData"`
	Signature    string `json:"signature"`
}

// Payment describes one order to create.
type Payment struct {
	OrderID   string
	RequestID string
	Amount    int64
	OrderInfo string
	ExtraData string
}

type Client struct {
	cfg        Config
	httpClient *http.Client
}

func New(cfg Config) *Client {
	return &Client{cfg: cfg, httpClient: &http.Client{Timeout: cfg.Timeout}}
}

// WithHTTPClient swaps the transport. Tests only.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

func (c *Client) PartnerCode() string { return c.cfg.PartnerCode }

func (c *Client) configured() bool {
	return c.cfg.Endpoint != "" && c.cfg.PartnerCode != "" && c.cfg.AccessKey != "" && c.cfg.SecretKey != ""
}

// CreateSignatureBase is the alphabetical field string MoMo signs for /create.
func (c *Client) CreateSignatureBase(r CreateRequest) string {
	return crypto.BaseString(
		crypto.Field{Key: "accessKey", Value: c.cfg.AccessKey},
		crypto.Field{Key: "amount", Value: strconv.FormatInt(r.Amount, 10)},
		crypto.Field{Key: "extraData", Value: r.ExtraData},
		crypto.Field{Key: "ipnUrl", Value: r.IPNURL},
		crypto.Field{Key: "orderId", Value: r.OrderID},
		crypto.Field{Key: "orderInfo", Value: r.OrderInfo},
		crypto.Field{Key: "partnerCode", Value: r.PartnerCode},
		crypto.Field{Key: "redirectUrl", Value: r.RedirectURL},
		crypto.Field{Key: "requestId", Value: r.RequestID},
		crypto.Field{Key: "requestType", Value: r.RequestType},
	)
}

// IPNSignatureBase is the alphabetical field string MoMo signs for IPN bodies.
func (c *Client) IPNSignatureBase(n IPN) string {
	return crypto.BaseString(
		crypto.Field{Key: "accessKey", Value: c.cfg.AccessKey},
		crypto.Field{Key: "amount", Value: strconv.FormatInt(n.Amount, 10)},
		crypto.Field{Key: "extraData", Value: n.ExtraData},
		crypto.Field{Key: "message", Value: n.Message},
		crypto.Field{Key: "orderId", Value: n.OrderID},
		crypto.Field{Key: "orderInfo", Value: n.OrderInfo},
		crypto.Field{Key: "orderType", Value: n.OrderType},
		crypto.Field{Key: "partnerCode", Value: n.PartnerCode},
		crypto.Field{Key: "payType", Value: n.PayType},
		crypto.Field{Key: "requestId", Value: n.RequestID},
		crypto.Field{Key: "responseTime", Value: strconv.FormatInt(n.ResponseTime, 10)},
		crypto.Field{Key: "resultCode", Value: strconv.Itoa(n.ResultCode)},
		crypto.Field{Key: "transId", Value: strconv.FormatInt(n.TransID, 10)},
	)
}

// BuildCreateRequest fills config defaults and signs the payload.
func (c *Client) BuildCreateRequest(p Payment) CreateRequest {
	r := CreateRequest{
		PartnerCode: c.cfg.PartnerCode,
		RequestID:   p.RequestID,
		Amount:      p.Amount,
		OrderID:     p.OrderID,
		OrderInfo:   p.OrderInfo,
		RedirectURL: c.cfg.RedirectURL,
		IPNURL:      c.cfg.IPNURL,
		RequestType: c.cfg.RequestType,
		ExtraData:   p.ExtraData,
		Lang:        c.cfg.Lang,
		AutoCapture: true,
	}
	r.Signature = crypto.SignHMACSHA256(c.cfg.SecretKey, c.CreateSignatureBase(r))
	return r
}

// Create registers the order with the gateway and returns the pay URL.
func (c *Client) Create(ctx context.Context, p Payment) (*CreateResponse, error) {
	if !c.configured() {
		return nil, ErrNotConfigured
	}

	var resp CreateResponse
	if err := c.post(ctx, "/create", c.BuildCreateRequest(p), &resp); err != nil {
		return nil, fmt.Errorf("momo create: %w", err)
	}
	if resp.ResultCode != ResultSuccess {
		return &resp, fmt.Errorf("%w (resultCode=%d, msg=%s)", ErrUnexpectedResponse, resp.ResultCode, resp.Message)
	}
	if resp.PayURL == "" {
		return &resp, ErrUnexpectedResponse
	}
	return &resp, nil
}

// VerifyIPN checks the IPN signature and partner code.
func (c *Client) VerifyIPN(n IPN) error {
	if n.PartnerCode != c.cfg.PartnerCode {
		return fmt.Errorf("%w: partner code mismatch", ErrInvalidSignature)
	}
	if !crypto.VerifyHMACSHA256(c.cfg.SecretKey, c.IPNSignatureBase(n), n.Signature) {
		return ErrInvalidSignature
	}
	return nil
}

// SignIPN computes the signature the gateway would attach. Used by tests and
// local tooling that replays callbacks.
func (c *Client) SignIPN(n IPN) string {
	return crypto.SignHMACSHA256(c.cfg.SecretKey, c.IPNSignatureBase(n))
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint+path, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 500 {
		return fmt.Errorf("%w: http %d", ErrUnexpectedResponse, res.StatusCode)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
