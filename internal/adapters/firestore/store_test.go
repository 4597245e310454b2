package firestore

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"shelter-meds/internal/platform/httpclient"
	"shelter-meds/internal/ports/auth"
	"shelter-meds/internal/ports/docstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docsPrefix = "/projects/p1/databases/(default)/documents"

func newTestStore(t *testing.T, h http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	hc, err := httpclient.New(httpclient.Options{Timeout: 2 * time.Second})
	require.NoError(t, err)

	s, err := New(hc, Options{BaseURL: srv.URL, ProjectID: "p1"}, nil)
	require.NoError(t, err)
	return s
}

var testCred = auth.Credential{Token: "tok-1", SubjectID: "u1"}

func TestNew_RequiresProject(t *testing.T) {
	hc, err := httpclient.New(httpclient.Options{})
	require.NoError(t, err)

	_, err = New(hc, Options{}, nil)
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestStore_GetDocuments_ListPagesAndSkipsMalformed(t *testing.T) {
	calls := 0
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, docsPrefix+"/shelters/s1/animals", r.URL.Path)
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("pageToken") == "" {
			_, _ = io.WriteString(w, `{
				"documents": [
					{"name": "`+docsPrefix[1:]+`/shelters/s1/animals/a1",
					 "fields": {"name": {"stringValue": "Luna"}, "isActive": {"booleanValue": true}},
					 "createTime": "2024-03-01T10:00:00.123456Z"},
					{"name": "`+docsPrefix[1:]+`/shelters/s1/animals/bad",
					 "fields": {"name": {"geoPointValue": {}}}}
				],
				"nextPageToken": "next"
			}`)
			return
		}
		_, _ = io.WriteString(w, `{"documents": [
			{"name": "`+docsPrefix[1:]+`/shelters/s1/animals/a2", "fields": {"name": {"stringValue": "Toby"}}}
		]}`)
	})

	docs, err := s.GetDocuments(context.Background(), testCred, "s1", "animals")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, 2, calls)

	assert.Equal(t, "a1", docs[0].ID)
	name, err := docs[0].Fields.String("name")
	require.NoError(t, err)
	assert.Equal(t, "Luna", name)
	assert.Equal(t, 2024, docs[0].CreateTime.Year())
	assert.Equal(t, "a2", docs[1].ID)
}

func TestStore_GetDocuments_MissingCollectionIsEmpty(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":404}}`, http.StatusNotFound)
	})

	docs, err := s.GetDocuments(context.Background(), testCred, "s1", "medications")
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestStore_GetDocuments_RunQuery(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, docsPrefix+"/shelters/s1:runQuery", r.URL.Path)

		var body struct {
			StructuredQuery struct {
				From []struct {
					CollectionID string `json:"collectionId"`
				} `json:"from"`
				Where struct {
					CompositeFilter struct {
						Op      string `json:"op"`
						Filters []struct {
							FieldFilter struct {
								Field struct {
									FieldPath string `json:"fieldPath"`
								} `json:"field"`
								Op    string                     `json:"op"`
								Value map[string]json.RawMessage `json:"value"`
							} `json:"fieldFilter"`
						} `json:"filters"`
					} `json:"compositeFilter"`
				} `json:"where"`
			} `json:"structuredQuery"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		q := body.StructuredQuery
		require.Len(t, q.From, 1)
		assert.Equal(t, "doseLogs", q.From[0].CollectionID)
		assert.Equal(t, "AND", q.Where.CompositeFilter.Op)
		require.Len(t, q.Where.CompositeFilter.Filters, 2)
		assert.Equal(t, "animalId", q.Where.CompositeFilter.Filters[0].FieldFilter.Field.FieldPath)
		assert.Equal(t, "EQUAL", q.Where.CompositeFilter.Filters[0].FieldFilter.Op)
		assert.Equal(t, "GREATER_THAN_OR_EQUAL", q.Where.CompositeFilter.Filters[1].FieldFilter.Op)
		assert.Contains(t, q.Where.CompositeFilter.Filters[1].FieldFilter.Value, "timestampValue")

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"readTime": "2024-03-10T00:00:00Z"},
			{"document": {"name": "x/doseLogs/l1", "fields": {"animalId": {"stringValue": "a1"}}}}
		]`)
	})

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	docs, err := s.GetDocuments(context.Background(), testCred, "s1", "doseLogs",
		docstore.Eq("animalId", docstore.String("a1")),
		docstore.Filter{Field: "timeAdministered", Op: docstore.OpGreaterOrEqual, Value: docstore.Timestamp(from)},
	)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "l1", docs[0].ID)
}

func TestStore_GetDocument_NotFound(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, docsPrefix+"/users/u9", r.URL.Path)
		http.Error(w, `{"error":{"code":404,"status":"NOT_FOUND"}}`, http.StatusNotFound)
	})

	_, err := s.GetDocument(context.Background(), testCred, "", "users", "u9")
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestStore_CreateDocument(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, docsPrefix+"/shelters/s1/medications", r.URL.Path)
		assert.Equal(t, "m1", r.URL.Query().Get("documentId"))

		var body struct {
			Fields map[string]map[string]any `json:"fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Amoxicillin", body.Fields["name"]["stringValue"])
		assert.Equal(t, "3", body.Fields["dosesPerDay"]["integerValue"])
		assert.Contains(t, body.Fields, "endDate")
		assert.Nil(t, body.Fields["endDate"]["nullValue"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"name": "x/medications/m1"}`)
	})

	err := s.CreateDocument(context.Background(), testCred, "s1", "medications", "m1", docstore.Fields{
		"name":        docstore.String("Amoxicillin"),
		"dosesPerDay": docstore.Integer(3),
		"endDate":     docstore.Null(),
	})
	require.NoError(t, err)
}

func TestStore_PatchDocument_UpdateMask(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, docsPrefix+"/shelters/s1/scheduledDoses/d1", r.URL.Path)
		assert.Equal(t, []string{"notes", "status"}, r.URL.Query()["updateMask.fieldPaths"])
		assert.Equal(t, "true", r.URL.Query().Get("currentDocument.exists"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{}`)
	})

	err := s.PatchDocument(context.Background(), testCred, "s1", "scheduledDoses", "d1", docstore.Fields{
		"status": docstore.String("discontinued"),
		"notes":  docstore.String(""),
	})
	require.NoError(t, err)
}

func TestStore_PatchDocument_MissingIsNotFound(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":404}}`, http.StatusNotFound)
	})

	err := s.PatchDocument(context.Background(), testCred, "s1", "scheduledDoses", "ghost", docstore.Fields{"notes": docstore.String("x")})
	assert.ErrorIs(t, err, docstore.ErrNotFound)
}

func TestStore_UpstreamErrorIsTransport(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	err := s.DeleteDocument(context.Background(), testCred, "s1", "animals", "a1")
	require.Error(t, err)
	assert.ErrorIs(t, err, httpclient.ErrTransport)
	assert.Equal(t, http.StatusInternalServerError, httpclient.StatusCode(err))
}
