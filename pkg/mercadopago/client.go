package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kurokira/storefront-backend/pkg/config"
	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
	"github.com/kurokira/storefront-backend/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"

	defaultBaseURL = "https://api.mercadopago.com"
	preferencePath = "/checkout/preferences"
)

var (
	errAccessTokenRequired = errors.New("mercadopago access token is required")
	errInvalidEnv          = fmt.Errorf("mercadopago environment must be %q or %q", sandboxEnv, productionEnv)
	errLoggerRequired      = errors.New("mercadopago logger is required")
)

// PreferenceItem is one purchasable line sent to the gateway.
type PreferenceItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Quantity   int    `json:"quantity"`
	UnitPrice  int    `json:"unit_price"`
	PictureURL string `json:"picture_url,omitempty"`
}

// PayerPhone is the phone split the gateway expects.
type PayerPhone struct {
	AreaCode string `json:"area_code"`
	Number   string `json:"number"`
}

// PayerIdentification is the national identification on a preference.
type PayerIdentification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

// PayerAddress is the delivery address on a preference.
type PayerAddress struct {
	StreetName   string `json:"street_name,omitempty"`
	StreetNumber string `json:"street_number,omitempty"`
	ZipCode      string `json:"zip_code,omitempty"`
}

// PreferencePayer identifies the buyer on a preference.
type PreferencePayer struct {
	Name           string              `json:"name"`
	Surname        string              `json:"surname"`
	Email          string              `json:"email"`
	Phone          PayerPhone          `json:"phone"`
	Identification PayerIdentification `json:"identification"`
	Address        PayerAddress        `json:"address"`
}

// PreferenceRequest is the payload for creating a checkout preference.
type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	Payer             PreferencePayer  `json:"payer"`
	ExternalReference string           `json:"external_reference"`
}

// Preference is the gateway response for a created preference.
type Preference struct {
	ID              string `json:"id"`
	InitPoint       string `json:"init_point"`
	SandboxInitPoint string `json:"sandbox_init_point"`
}

// Client wraps the Mercado Pago preference API with auth, timeout, and error mapping.
type Client struct {
	httpClient  *http.Client
	accessToken string
	environment string
	baseURL     string
	logger      *logger.Logger
}

// NewClient initializes the gateway wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.MercadoPagoConfig, timeout time.Duration, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	accessToken := strings.TrimSpace(cfg.AccessToken)
	if accessToken == "" {
		logg.Warn(ctx, "mercadopago access token not configured, gateway submits will be rejected")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	c := &Client{
		httpClient:  &http.Client{Timeout: timeout},
		accessToken: accessToken,
		environment: env,
		baseURL:     baseURL,
		logger:      logg,
	}

	logg.Info(ctx, "mercadopago client initialized")
	return c, nil
}

// Environment reports the normalized gateway environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// CreatePreference registers a checkout preference and returns the created record.
func (c *Client) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	if c.accessToken == "" {
		return nil, pkgerrors.Wrap(pkgerrors.CodePaymentConfig, errAccessTokenRequired, "gateway credentials missing")
	}
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "preference requires at least one item")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode preference request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+preferencePath, bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build preference request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "call payment gateway")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "read gateway response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyGatewayError(resp.StatusCode, payload)
	}

	var pref Preference
	if err := json.Unmarshal(payload, &pref); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodePayment, err, "decode gateway response")
	}
	if strings.TrimSpace(pref.ID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodePayment, "gateway returned an empty preference")
	}
	return &pref, nil
}

// RedirectURL picks the checkout URL matching the configured environment.
func (c *Client) RedirectURL(pref *Preference) string {
	if pref == nil {
		return ""
	}
	if c.environment == sandboxEnv && strings.TrimSpace(pref.SandboxInitPoint) != "" {
		return pref.SandboxInitPoint
	}
	return pref.InitPoint
}

// classifyGatewayError separates credential problems from transient gateway failures.
func classifyGatewayError(status int, payload []byte) error {
	message := string(payload)
	lowered := strings.ToLower(message)
	if status == http.StatusUnauthorized || status == http.StatusForbidden ||
		strings.Contains(lowered, "access token") || strings.Contains(lowered, "unauthorized") {
		return pkgerrors.New(pkgerrors.CodePaymentConfig, fmt.Sprintf("gateway rejected credentials: status %d", status))
	}
	return pkgerrors.New(pkgerrors.CodePayment, fmt.Sprintf("gateway returned status %d", status))
}

func normalizeEnv(value string) (string, error) {
	env := strings.ToLower(strings.TrimSpace(value))
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	case "":
		return sandboxEnv, nil
	default:
		return "", errInvalidEnv
	}
}
