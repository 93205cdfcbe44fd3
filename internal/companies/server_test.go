package companies

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_ListCompanies(t *testing.T) {
	store := openTestStore(t)
	srv := NewServer(store, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var got []Company
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Len(t, got, 12)
	assert.Equal(t, "Baukraft Nord", got[0].CompanyName)
}

func TestServer_EmptyListIsArray(t *testing.T) {
	srv := NewServer(&fakeSource{}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestServer_ListError(t *testing.T) {
	srv := NewServer(&fakeSource{listErr: errors.New("disk gone")}, nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/companies", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "disk gone")
}

func TestServer_EditCompany(t *testing.T) {
	source := &fakeSource{companies: []Company{{ID: "c1", CompanyName: "Old", Country: "Italy"}}}
	srv := NewServer(source, nil)

	cases := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"applied", "/companies/c1", `{"field":"companyName","value":"New"}`, http.StatusOK},
		{"read-only field", "/companies/c1", `{"field":"country","value":"Malta"}`, http.StatusBadRequest},
		{"unknown company", "/companies/zz", `{"field":"companyName","value":"x"}`, http.StatusNotFound},
		{"bad body", "/companies/c1", `{`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPatch, tc.path, strings.NewReader(tc.body))
			srv.Handler().ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
	assert.Equal(t, "New", source.companies[0].CompanyName)
	assert.Equal(t, []EditRequest{{Field: "companyName", Value: "New"}}, source.updates)
}

func TestServer_Metrics(t *testing.T) {
	srv := NewServer(&fakeSource{}, nil)
	for i := 0; i < 2; i++ {
		srv.Handler().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/companies", nil))
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `gridview_http_requests_total{method="GET",route="/companies",status_code="200"} 2`)
	assert.Contains(t, body, "gridview_http_request_duration_seconds_bucket")
}

func TestServer_ServeShutsDownOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := NewServer(&fakeSource{companies: []Company{{ID: "1", CompanyName: "Solo"}}}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, l) }()

	client := NewClient("http://"+l.Addr().String(), time.Second)
	list, err := client.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Solo", list[0].CompanyName)
	client.http.CloseIdleConnections()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	_, err = http.Get("http://" + l.Addr().String() + "/companies")
	if err == nil {
		t.Fatal("expected connection error after shutdown")
	}
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}
