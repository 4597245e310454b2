// Package firestore implementa docstore.Store sobre la API REST de Firestore.
package firestore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"shelter-meds/internal/platform/httpclient"
	"shelter-meds/internal/ports/auth"
	"shelter-meds/internal/ports/docstore"

	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://firestore.googleapis.com/v1"

	pageSize = 300
)

var ErrNotConfigured = errors.New("firestore client not configured")

type Options struct {
	BaseURL   string // vacío = DefaultBaseURL
	ProjectID string
}

// Store habla con la base "(default)" del proyecto. Cada llamada manda
// la credencial del usuario como Bearer.
type Store struct {
	hc   *httpclient.Client
	root string
	log  *zap.Logger
}

var _ docstore.Store = (*Store)(nil)

func New(hc *httpclient.Client, opts Options, log *zap.Logger) (*Store, error) {
	if hc == nil || strings.TrimSpace(opts.ProjectID) == "" {
		return nil, ErrNotConfigured
	}
	if log == nil {
		log = zap.NewNop()
	}
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return &Store{
		hc:   hc,
		root: fmt.Sprintf("%s/projects/%s/databases/(default)/documents", base, url.PathEscape(opts.ProjectID)),
		log:  log.Named("firestore"),
	}, nil
}

// parentPath: shelterID vacío = raíz; si no, shelters/{sid}.
func parentPath(shelterID string) string {
	if shelterID == "" {
		return ""
	}
	return "shelters/" + url.PathEscape(shelterID)
}

func collectionPath(shelterID, collection string) string {
	if p := parentPath(shelterID); p != "" {
		return p + "/" + url.PathEscape(collection)
	}
	return url.PathEscape(collection)
}

func (s *Store) collectionURL(shelterID, collection string) string {
	return s.root + "/" + collectionPath(shelterID, collection)
}

func (s *Store) documentURL(shelterID, collection, id string) string {
	return s.collectionURL(shelterID, collection) + "/" + url.PathEscape(id)
}

func (s *Store) GetDocuments(ctx context.Context, cred auth.Credential, shelterID, collection string, filters ...docstore.Filter) ([]docstore.Document, error) {
	var (
		raw []wireDocument
		err error
	)
	if len(filters) == 0 {
		raw, err = s.list(ctx, cred, shelterID, collection)
	} else {
		raw, err = s.runQuery(ctx, cred, shelterID, collection, filters)
	}
	if err != nil {
		return nil, fmt.Errorf("firestore list %s: %w", collectionPath(shelterID, collection), err)
	}

	out := make([]docstore.Document, 0, len(raw))
	for _, w := range raw {
		doc, err := toDocument(w)
		if err != nil {
			perr := &docstore.PartialParseError{Collection: collection, DocumentID: doc.ID, Err: err}
			s.log.Warn("skipping malformed document",
				zap.String("shelter_id", shelterID),
				zap.String("collection", collection),
				zap.Error(perr),
			)
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func (s *Store) list(ctx context.Context, cred auth.Credential, shelterID, collection string) ([]wireDocument, error) {
	var (
		all   []wireDocument
		token string
	)
	for {
		q := url.Values{}
		q.Set("pageSize", fmt.Sprint(pageSize))
		if token != "" {
			q.Set("pageToken", token)
		}

		var page struct {
			Documents     []wireDocument `json:"documents"`
			NextPageToken string         `json:"nextPageToken"`
		}
		err := s.hc.Do(ctx, httpclient.Request{
			Method:  http.MethodGet,
			URL:     s.collectionURL(shelterID, collection),
			Headers: httpclient.Bearer(cred.Token),
			Query:   q,
		}, &page)
		if err != nil {
			// Colección inexistente = vacía.
			if httpclient.StatusCode(err) == http.StatusNotFound {
				return all, nil
			}
			return nil, err
		}

		all = append(all, page.Documents...)
		if page.NextPageToken == "" {
			return all, nil
		}
		token = page.NextPageToken
	}
}

type fieldFilter struct {
	Field struct {
		FieldPath string `json:"fieldPath"`
	} `json:"field"`
	Op    string         `json:"op"`
	Value map[string]any `json:"value"`
}

func buildWhere(filters []docstore.Filter) map[string]any {
	ffs := make([]map[string]any, 0, len(filters))
	for _, f := range filters {
		var ff fieldFilter
		ff.Field.FieldPath = f.Field
		ff.Op = string(f.Op)
		ff.Value = encodeValue(f.Value)
		ffs = append(ffs, map[string]any{"fieldFilter": ff})
	}
	if len(ffs) == 1 {
		return ffs[0]
	}
	return map[string]any{
		"compositeFilter": map[string]any{"op": "AND", "filters": ffs},
	}
}

// runQuery hace POST {parent}:runQuery. La respuesta es un array donde
// algunos elementos traen solo readTime (sin documento).
func (s *Store) runQuery(ctx context.Context, cred auth.Credential, shelterID, collection string, filters []docstore.Filter) ([]wireDocument, error) {
	parent := s.root
	if p := parentPath(shelterID); p != "" {
		parent += "/" + p
	}

	body := map[string]any{
		"structuredQuery": map[string]any{
			"from":  []map[string]any{{"collectionId": collection}},
			"where": buildWhere(filters),
		},
	}

	var resp []struct {
		Document *wireDocument `json:"document"`
	}
	if err := s.hc.DoJSON(ctx, http.MethodPost, parent+":runQuery", httpclient.Bearer(cred.Token), body, &resp); err != nil {
		return nil, err
	}

	out := make([]wireDocument, 0, len(resp))
	for _, r := range resp {
		if r.Document != nil {
			out = append(out, *r.Document)
		}
	}
	return out, nil
}

func (s *Store) GetDocument(ctx context.Context, cred auth.Credential, shelterID, collection, id string) (docstore.Document, error) {
	var w wireDocument
	err := s.hc.Do(ctx, httpclient.Request{
		Method:  http.MethodGet,
		URL:     s.documentURL(shelterID, collection, id),
		Headers: httpclient.Bearer(cred.Token),
	}, &w)
	if err != nil {
		return docstore.Document{}, s.wrap("get", shelterID, collection, id, err)
	}

	doc, err := toDocument(w)
	if err != nil {
		return docstore.Document{}, &docstore.PartialParseError{Collection: collection, DocumentID: id, Err: err}
	}
	return doc, nil
}

func (s *Store) CreateDocument(ctx context.Context, cred auth.Credential, shelterID, collection, id string, fields docstore.Fields) error {
	q := url.Values{}
	if id != "" {
		q.Set("documentId", id)
	}
	err := s.hc.Do(ctx, httpclient.Request{
		Method:  http.MethodPost,
		URL:     s.collectionURL(shelterID, collection),
		Headers: httpclient.Bearer(cred.Token),
		Query:   q,
		Body:    map[string]any{"fields": encodeFields(fields)},
	}, nil)
	if err != nil {
		return s.wrap("create", shelterID, collection, id, err)
	}
	return nil
}

// PatchDocument manda updateMask con los campos presentes y exige que el
// documento exista (si no, ErrNotFound en vez de crearlo).
func (s *Store) PatchDocument(ctx context.Context, cred auth.Credential, shelterID, collection, id string, fields docstore.Fields) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	q := url.Values{}
	for _, k := range keys {
		q.Add("updateMask.fieldPaths", k)
	}
	q.Set("currentDocument.exists", "true")

	err := s.hc.Do(ctx, httpclient.Request{
		Method:  http.MethodPatch,
		URL:     s.documentURL(shelterID, collection, id),
		Headers: httpclient.Bearer(cred.Token),
		Query:   q,
		Body:    map[string]any{"fields": encodeFields(fields)},
	}, nil)
	if err != nil {
		return s.wrap("patch", shelterID, collection, id, err)
	}
	return nil
}

func (s *Store) DeleteDocument(ctx context.Context, cred auth.Credential, shelterID, collection, id string) error {
	err := s.hc.Do(ctx, httpclient.Request{
		Method:  http.MethodDelete,
		URL:     s.documentURL(shelterID, collection, id),
		Headers: httpclient.Bearer(cred.Token),
	}, nil)
	if err != nil {
		return s.wrap("delete", shelterID, collection, id, err)
	}
	return nil
}

func (s *Store) wrap(op, shelterID, collection, id string, err error) error {
	target := collectionPath(shelterID, collection) + "/" + id
	if httpclient.StatusCode(err) == http.StatusNotFound {
		return fmt.Errorf("firestore %s %s: %w", op, target, docstore.ErrNotFound)
	}
	s.log.Debug("firestore call failed", zap.String("op", op), zap.String("doc", target), zap.Error(err))
	return fmt.Errorf("firestore %s %s: %w", op, target, err)
}
