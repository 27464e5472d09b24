package forwarding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/salesdesk/backend/internal/domain/record"
	"github.com/salesdesk/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPForwarder_Forward(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	f, err := NewHTTPForwarder(config.ForwardConfig{URL: srv.URL + "/", Token: "secret", Timeout: time.Second})
	require.NoError(t, err)

	rec := record.NewRecord(record.KindTickets, record.Fields{"companyname": "Acme", "Status": "Endorsed"}, time.Now())
	require.NoError(t, f.Forward(context.Background(), rec))

	assert.Equal(t, "/tickets", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)
	assert.Equal(t, "Acme", gotBody["companyname"])
	assert.Equal(t, rec.ID.String(), gotBody["id"])
	assert.NotContains(t, rec.Fields, "id")
}

func TestHTTPForwarder_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	f, err := NewHTTPForwarder(config.ForwardConfig{URL: srv.URL})
	require.NoError(t, err)

	err = f.Forward(context.Background(), record.NewRecord(record.KindTickets, nil, time.Now()))
	assert.ErrorIs(t, err, ErrForwardRejected)
	assert.ErrorContains(t, err, "502")
}

func TestHTTPForwarder_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f, err := NewHTTPForwarder(config.ForwardConfig{URL: url, Timeout: time.Second})
	require.NoError(t, err)
	assert.Error(t, f.Forward(context.Background(), record.NewRecord(record.KindTickets, nil, time.Now())))
}

func TestNewHTTPForwarder_RequiresURL(t *testing.T) {
	_, err := NewHTTPForwarder(config.ForwardConfig{})
	assert.Error(t, err)
}
