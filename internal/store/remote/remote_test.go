package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vanta/internal/core"
	"vanta/internal/store"
)

func newTestResource(t *testing.T, token string, h http.HandlerFunc) *Resource[core.Transaction] {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewResource(NewClient(srv.URL+"/api/", token), core.TransactionSchema)
}

const txJSON = `{"id":1,"date":"2024-01-01","type":"sale","description":"Retainer","amount":100}`

func TestListArray(t *testing.T) {
	r := newTestResource(t, "secret", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, "/api/transactions", req.URL.Path)
		assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"))
		assert.Equal(t, "5", req.URL.Query().Get("skip"))
		assert.Equal(t, "10", req.URL.Query().Get("limit"))
		io.WriteString(w, "["+txJSON+"]")
	})
	recs, err := r.List(context.Background(), store.ListOptions{Skip: 5, Limit: 10})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Retainer", recs[0].Description)
}

func TestListEnvelope(t *testing.T) {
	r := newTestResource(t, "", func(w http.ResponseWriter, req *http.Request) {
		assert.Empty(t, req.Header.Get("Authorization"))
		io.WriteString(w, `{"transactions":[`+txJSON+`],"total":1}`)
	})
	recs, err := r.List(context.Background(), store.ListOptions{})
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestListRejectsShapeMismatch(t *testing.T) {
	bodies := map[string]string{
		"unknown record field": `[{"id":1,"date":"2024-01-01","type":"sale","description":"x","amount":1,"memo":"?"}]`,
		"unknown envelope key": `{"transactions":[],"total":0,"page":1}`,
		"wrong envelope key":   `{"items":[]}`,
		"invalid enum":         `[{"id":1,"date":"2024-01-01","type":"gift","description":"x","amount":1}]`,
		"not json":             `<html>`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			r := newTestResource(t, "", func(w http.ResponseWriter, _ *http.Request) {
				io.WriteString(w, body)
			})
			_, err := r.List(context.Background(), store.ListOptions{})
			assert.ErrorIs(t, err, core.ErrValidation)
		})
	}
}

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, core.ErrAuth},
		{http.StatusForbidden, core.ErrAuth},
		{http.StatusNotFound, core.ErrNotFound},
		{http.StatusBadRequest, core.ErrValidation},
		{http.StatusUnprocessableEntity, core.ErrValidation},
		{http.StatusInternalServerError, core.ErrUnavailable},
		{http.StatusBadGateway, core.ErrUnavailable},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			r := newTestResource(t, "tok", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, `{"detail":"nope"}`)
			})
			_, err := r.Get(context.Background(), 9)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestServerMessageKept(t *testing.T) {
	r := newTestResource(t, "", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":"amount must be positive","kind":"validation"}`)
	})
	_, err := r.Create(context.Background(), core.NewTransaction())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount must be positive")
}

func TestEnvelopeKindDrivesClassification(t *testing.T) {
	r := newTestResource(t, "", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"error":"validation failed: amount must be positive","kind":"validation","field":"amount"}`)
	})
	_, err := r.Create(context.Background(), core.NewTransaction())
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "amount", ve.Field)
	assert.Equal(t, "validation failed: amount must be positive", ve.Error())

	cases := []struct {
		status int
		body   string
		want   error
	}{
		{http.StatusConflict, `{"error":"no such resource","kind":"not_found"}`, core.ErrNotFound},
		{http.StatusBadRequest, `{"error":"token expired","kind":"auth"}`, core.ErrAuth},
		{http.StatusTeapot, `{"error":"persistence medium unavailable","kind":"unavailable"}`, core.ErrUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.body, func(t *testing.T) {
			r := newTestResource(t, "", func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tc.status)
				io.WriteString(w, tc.body)
			})
			_, err := r.List(context.Background(), store.ListOptions{})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r := NewResource(NewClient(url, "tok"), core.TransactionSchema)
	_, err := r.List(context.Background(), store.ListOptions{})
	assert.ErrorIs(t, err, core.ErrUnavailable)
}

func TestCreateAndUpdateSendBody(t *testing.T) {
	var gotMethod, gotPath string
	var gotBody map[string]any
	r := newTestResource(t, "", func(w http.ResponseWriter, req *http.Request) {
		gotMethod, gotPath = req.Method, req.URL.Path
		assert.NoError(t, json.NewDecoder(req.Body).Decode(&gotBody))
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		io.WriteString(w, `{"id":7,"date":"2024-01-02","type":"expenditure","description":"Paper","amount":50,"created_at":"2024-01-02T10:00:00Z"}`)
	})

	draft := core.NewTransaction()
	draft.Date = "2024-01-02"
	draft.Type = core.TransactionExpenditure
	draft.Description = "Paper"
	draft.Amount = core.MoneyFromInt(50)

	created, err := r.Create(context.Background(), draft)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/transactions", gotPath)
	assert.NotContains(t, gotBody, "id")
	assert.Equal(t, int64(7), created.ID)
	assert.False(t, created.CreatedAt.IsZero())

	_, err = r.Update(context.Background(), 7, created)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/api/transactions/7", gotPath)
	assert.NotContains(t, gotBody, "created_at")
}

func TestCreateResponseWithoutID(t *testing.T) {
	r := newTestResource(t, "", func(w http.ResponseWriter, _ *http.Request) {
		io.WriteString(w, `{"date":"2024-01-02","type":"sale","description":"x","amount":1}`)
	})
	tx := core.NewTransaction()
	tx.Date, tx.Description, tx.Amount = "2024-01-02", "x", core.MoneyFromInt(1)
	_, err := r.Create(context.Background(), tx)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestDelete(t *testing.T) {
	deleted := map[string]bool{}
	r := newTestResource(t, "", func(w http.ResponseWriter, req *http.Request) {
		assert.Equal(t, http.MethodDelete, req.Method)
		if deleted[req.URL.Path] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		deleted[req.URL.Path] = true
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, r.Delete(context.Background(), 3))
	assert.ErrorIs(t, r.Delete(context.Background(), 3), core.ErrNotFound)
}
