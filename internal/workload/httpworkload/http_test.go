package httpworkload

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkload_SuccessfulRoundTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := New(Config{URL: srv.URL, RequestTimeout: time.Second})
	require.NoError(t, w.Setup(context.Background()))
	defer w.Teardown(context.Background())

	assert.NoError(t, w.PerformIteration(context.Background()))
	assert.Equal(t, 1, w.ItemsPerIteration())
}

func TestWorkload_ServerErrorIsReportedAsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := New(Config{URL: srv.URL, RequestTimeout: time.Second})
	require.NoError(t, w.Setup(context.Background()))

	assert.Error(t, w.PerformIteration(context.Background()))
}

func TestWorkload_SetupRejectsEmptyURL(t *testing.T) {
	w := New(Config{})
	assert.Error(t, w.Setup(context.Background()))
}
