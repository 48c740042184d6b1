package httpclient

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c := New(Options{})
	assert.Equal(t, 180*time.Second, c.Timeout)

	tr, ok := c.Transport.(*http.Transport)
	require.True(t, ok)
	assert.Equal(t, 180*time.Second, tr.ResponseHeaderTimeout)
}

func TestNew_HeaderTimeoutNeverExceedsTimeout(t *testing.T) {
	c := New(Options{Timeout: 10 * time.Second, ResponseHeaderTimeout: time.Minute})
	tr := c.Transport.(*http.Transport)
	assert.Equal(t, 10*time.Second, tr.ResponseHeaderTimeout)
}

func TestNew_PreferIPv4Dials(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	for _, prefer := range []bool{true, false} {
		c := New(Options{PreferIPv4: prefer, Timeout: 5 * time.Second})
		resp, err := c.Get(srv.URL)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}
}
