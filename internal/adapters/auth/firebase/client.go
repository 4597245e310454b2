// Package firebase implementa identity.Provider contra la API REST de
// Identity Toolkit (signInWithPassword / signUp / lookup).
package firebase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"shelter-meds/internal/platform/httpclient"
	"shelter-meds/internal/ports/auth"
	"shelter-meds/internal/ports/identity"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const DefaultBaseURL = "https://identitytoolkit.googleapis.com/v1"

var ErrNotConfigured = errors.New("identity provider not configured")

type Config struct {
	BaseURL string // vacío = DefaultBaseURL
	APIKey  string
}

type Client struct {
	hc      *httpclient.Client
	baseURL string
	apiKey  string
	log     *zap.Logger

	now func() time.Time
}

var _ identity.Provider = (*Client)(nil)

func NewClient(hc *httpclient.Client, cfg Config, log *zap.Logger) (*Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if hc == nil || key == "" {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = zap.NewNop()
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Client{
		hc:      hc,
		baseURL: base,
		apiKey:  key,
		log:     log.Named("identity"),
		now:     time.Now,
	}, nil
}

type passwordRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type tokenResponse struct {
	IDToken   string `json:"idToken"`
	LocalID   string `json:"localId"`
	Email     string `json:"email"`
	ExpiresIn string `json:"expiresIn"` // segundos, como string
}

func (c *Client) SignIn(ctx context.Context, email, password string) (auth.Credential, error) {
	return c.exchange(ctx, "accounts:signInWithPassword", email, password)
}

func (c *Client) SignUp(ctx context.Context, email, password string) (auth.Credential, error) {
	return c.exchange(ctx, "accounts:signUp", email, password)
}

func (c *Client) exchange(ctx context.Context, method, email, password string) (auth.Credential, error) {
	var out tokenResponse
	err := c.call(ctx, method, passwordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &out)
	if err != nil {
		return auth.Credential{}, err
	}
	if out.IDToken == "" || out.LocalID == "" {
		return auth.Credential{}, fmt.Errorf("%w: %s: missing idToken/localId", httpclient.ErrTransport, method)
	}

	return auth.Credential{
		Token:     out.IDToken,
		SubjectID: out.LocalID,
		ExpiresAt: c.expiry(out.IDToken, out.ExpiresIn),
	}, nil
}

// Lookup valida el token contra el provider. Si el JWT ya venció se
// rechaza sin ir a la red.
func (c *Client) Lookup(ctx context.Context, token string) (identity.Account, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return identity.Account{}, identity.ErrInvalidToken
	}
	if exp, ok := tokenExpiry(token); ok && !c.now().Before(exp) {
		return identity.Account{}, identity.ErrInvalidToken
	}

	var out struct {
		Users []struct {
			LocalID  string `json:"localId"`
			Email    string `json:"email"`
			Disabled bool   `json:"disabled"`
		} `json:"users"`
	}
	if err := c.call(ctx, "accounts:lookup", map[string]string{"idToken": token}, &out); err != nil {
		return identity.Account{}, err
	}
	if len(out.Users) == 0 || out.Users[0].LocalID == "" || out.Users[0].Disabled {
		return identity.Account{}, identity.ErrInvalidToken
	}
	return identity.Account{UID: out.Users[0].LocalID, Email: out.Users[0].Email}, nil
}

func (c *Client) call(ctx context.Context, method string, in, out any) error {
	err := c.hc.Do(ctx, httpclient.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/" + method,
		Query:  url.Values{"key": []string{c.apiKey}},
		Body:   in,
	}, out)
	if err == nil {
		return nil
	}

	if code := errorCode(err); code != "" {
		if mapped := mapErrorCode(code); mapped != nil {
			return mapped
		}
		c.log.Warn("identity provider error", zap.String("method", method), zap.String("code", code))
	}
	return fmt.Errorf("identity %s: %w", method, err)
}

// errorCode extrae error.message del cuerpo ({"error":{"message":"EMAIL_EXISTS"}}).
// Algunos códigos traen detalle: "WEAK_PASSWORD : Password should be ...".
func errorCode(err error) string {
	var he *httpclient.HTTPError
	if !errors.As(err, &he) || he.Body == "" {
		return ""
	}
	var body struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal([]byte(he.Body), &body) != nil {
		return ""
	}
	code, _, _ := strings.Cut(body.Error.Message, " ")
	return strings.TrimSpace(code)
}

func mapErrorCode(code string) error {
	switch code {
	case "EMAIL_EXISTS":
		return identity.ErrEmailExists
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return identity.ErrInvalidCredentials
	case "INVALID_ID_TOKEN", "TOKEN_EXPIRED", "USER_NOT_FOUND":
		return identity.ErrInvalidToken
	case "WEAK_PASSWORD", "INVALID_EMAIL", "MISSING_PASSWORD", "MISSING_EMAIL":
		return fmt.Errorf("%w: %s", identity.ErrRejected, code)
	default:
		return nil
	}
}

// expiry prefiere el exp del JWT; si no se puede leer usa expiresIn.
func (c *Client) expiry(token, expiresIn string) time.Time {
	if exp, ok := tokenExpiry(token); ok {
		return exp
	}
	if secs, err := strconv.Atoi(expiresIn); err == nil && secs > 0 {
		return c.now().Add(time.Duration(secs) * time.Second).UTC()
	}
	return time.Time{}
}

// tokenExpiry lee exp sin verificar la firma: la validez la decide el provider.
func tokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	parsed, _, err := parser.ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.UTC(), true
}
