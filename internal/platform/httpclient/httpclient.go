package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout = 10 * time.Second

	maxErrorBody = 1 << 10
)

// ErrTransport agrupa toda falla de la llamada externa: red, status no-2xx o
// respuesta que no se puede decodificar.
var ErrTransport = errors.New("transport error")

// Options configura el Client.
type Options struct {
	BaseURL    string // opcional; si se define, los paths relativos se resuelven contra él
	Timeout    time.Duration
	RetryCount int // solo reintenta errores de red y 502/503/504

	// Transport permite inyectar un RoundTripper (p.ej. para tests).
	Transport http.RoundTripper
}

// Client envuelve *resty.Client con helpers comunes para adapters.
type Client struct {
	rc *resty.Client
}

// New crea un Client con timeout razonable.
func New(opts Options) (*Client, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")

	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		if _, err := url.ParseRequestURI(base); err != nil {
			return nil, fmt.Errorf("invalid base url: %w", err)
		}
		rc.SetBaseURL(strings.TrimRight(base, "/"))
	}

	if opts.RetryCount > 0 {
		rc.SetRetryCount(opts.RetryCount).
			SetRetryWaitTime(200 * time.Millisecond).
			SetRetryMaxWaitTime(2 * time.Second).
			AddRetryCondition(func(r *resty.Response, err error) bool {
				if err != nil {
					return true
				}
				switch r.StatusCode() {
				case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
					return true
				}
				return false
			})
	}

	if opts.Transport != nil {
		rc.SetTransport(opts.Transport)
	}

	return &Client{rc: rc}, nil
}

// HTTPError representa una respuesta no-2xx.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("http error: status=%d", e.StatusCode)
	}
	return fmt.Sprintf("http error: status=%d body=%s", e.StatusCode, e.Body)
}

func (e *HTTPError) Unwrap() error { return ErrTransport }

// StatusCode devuelve el status de un *HTTPError envuelto en err, o 0.
func StatusCode(err error) int {
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}

// Request describe una llamada. Body puede ser un valor a serializar como JSON
// o []byte crudo (en cuyo caso ContentType es obligatorio).
type Request struct {
	Method      string
	URL         string // URL absoluta o path relativo a BaseURL
	Headers     map[string]string
	Query       url.Values
	Body        any
	ContentType string
}

// Do ejecuta req y decodifica el JSON de la respuesta en out (si out != nil).
// Retorna *HTTPError si el status no es 2xx.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	if c == nil || c.rc == nil {
		return errors.New("httpclient: nil client")
	}
	if strings.TrimSpace(req.URL) == "" {
		return errors.New("httpclient: empty url")
	}

	r := c.rc.R().SetContext(ctx)

	for k, v := range req.Headers {
		if strings.TrimSpace(k) == "" {
			continue
		}
		r.SetHeader(k, v)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}

	if req.Body != nil {
		switch b := req.Body.(type) {
		case []byte:
			r.SetHeader("Content-Type", req.ContentType)
			r.SetBody(b)
		default:
			raw, err := json.Marshal(b)
			if err != nil {
				return fmt.Errorf("httpclient: marshal json: %w", err)
			}
			r.SetHeader("Content-Type", "application/json")
			r.SetBody(raw)
		}
	}

	resp, err := r.Execute(req.Method, req.URL)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, req.Method, req.URL, err)
	}

	raw := resp.Body()
	if !resp.IsSuccess() {
		body := strings.TrimSpace(string(raw))
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return &HTTPError{StatusCode: resp.StatusCode(), Body: body}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: unmarshal json: %v", ErrTransport, err)
	}
	return nil
}

// DoJSON es el atajo para requests JSON sin query string.
func (c *Client) DoJSON(ctx context.Context, method, pathOrURL string, headers map[string]string, in, out any) error {
	return c.Do(ctx, Request{
		Method:  method,
		URL:     pathOrURL,
		Headers: headers,
		Body:    in,
	}, out)
}

// Bearer arma el header Authorization para un token.
func Bearer(token string) map[string]string {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + token}
}
