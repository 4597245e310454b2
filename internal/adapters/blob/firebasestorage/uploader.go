package firebasestorage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"shelter-meds/internal/platform/httpclient"
	"shelter-meds/internal/ports/auth"
	"shelter-meds/internal/ports/blob"
)

const DefaultBaseURL = "https://firebasestorage.googleapis.com/v0"

var ErrNotConfigured = errors.New("blob storage not configured")

type Config struct {
	BaseURL string // vacío = DefaultBaseURL
	Bucket  string
}

// Uploader sube objetos al bucket con la credencial del usuario.
type Uploader struct {
	hc      *httpclient.Client
	baseURL string
	bucket  string
}

var _ blob.Uploader = (*Uploader)(nil)

func New(hc *httpclient.Client, cfg Config) (*Uploader, error) {
	bucket := strings.TrimSpace(cfg.Bucket)
	if hc == nil || bucket == "" {
		return nil, ErrNotConfigured
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Uploader{hc: hc, baseURL: base, bucket: bucket}, nil
}

// Upload devuelve la URL de descarga con el primer download token.
func (u *Uploader) Upload(ctx context.Context, cred auth.Credential, path string, data []byte, contentType string) (string, error) {
	path = strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "" {
		return "", fmt.Errorf("blob upload: empty path")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	objectURL := fmt.Sprintf("%s/b/%s/o", u.baseURL, url.PathEscape(u.bucket))

	var out struct {
		Name           string `json:"name"`
		DownloadTokens string `json:"downloadTokens"`
	}
	err := u.hc.Do(ctx, httpclient.Request{
		Method:      http.MethodPost,
		URL:         objectURL,
		Headers:     httpclient.Bearer(cred.Token),
		Query:       url.Values{"uploadType": []string{"media"}, "name": []string{path}},
		Body:        data,
		ContentType: contentType,
	}, &out)
	if err != nil {
		return "", fmt.Errorf("blob upload %s: %w", path, err)
	}

	name := out.Name
	if name == "" {
		name = path
	}
	download := objectURL + "/" + url.PathEscape(name) + "?alt=media"
	if tok, _, _ := strings.Cut(out.DownloadTokens, ","); tok != "" {
		download += "&token=" + url.QueryEscape(tok)
	}
	return download, nil
}
