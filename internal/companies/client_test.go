package companies

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListAndUpdateAgainstServer(t *testing.T) {
	store := openTestStore(t)
	ts := httptest.NewServer(NewServer(store, nil).Handler())
	defer ts.Close()

	client := NewClient(ts.URL+"/", time.Second)
	defer client.http.CloseIdleConnections()
	ctx := context.Background()

	list, err := client.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 12)

	updated, err := client.Update(ctx, list[1].ID, FieldCompanyName, "Atelier Pierre")
	require.NoError(t, err)
	assert.Equal(t, "Atelier Pierre", updated.CompanyName)

	_, err = client.Update(ctx, list[1].ID, FieldCountry, "Belgium")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadRequest, statusErr.Code)
	assert.Contains(t, statusErr.Error(), "field is not editable")
}

func TestClient_NonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second)
	defer client.http.CloseIdleConnections()
	_, err := client.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, "unexpected status 503 Service Unavailable: maintenance", err.Error())
}

func TestClient_SendsEditBody(t *testing.T) {
	var got EditRequest
	var path, contentType string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		contentType = r.Header.Get("Content-Type")
		_ = json.Unmarshal([]byte(readAll(t, r.Body)), &got)
		_ = json.NewEncoder(w).Encode(Company{ID: "a b", Speciality: got.Value})
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second)
	defer client.http.CloseIdleConnections()
	company, err := client.Update(context.Background(), "a b", FieldSpeciality, "Tiling")
	require.NoError(t, err)
	assert.Equal(t, "/companies/a%20b", path)
	assert.Equal(t, "application/json", contentType)
	assert.Equal(t, EditRequest{Field: "speciality", Value: "Tiling"}, got)
	assert.Equal(t, "Tiling", company.Speciality)
}

func TestClient_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := NewClient(ts.URL, time.Second).List(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestClient_BadJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer ts.Close()

	client := NewClient(ts.URL, time.Second)
	defer client.http.CloseIdleConnections()
	_, err := client.List(context.Background())
	assert.ErrorContains(t, err, "decode GET /companies")
}
