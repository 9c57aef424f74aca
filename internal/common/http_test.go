package common

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.0.2.7:51234"
	require.Equal(t, "192.0.2.7", ClientIP(req))

	req.RemoteAddr = ""
	req.Header.Set("X-Forwarded-For", " 203.0.113.4 , 10.0.0.1")
	require.Equal(t, "203.0.113.4", ClientIP(req))

	req.Header.Del("X-Forwarded-For")
	req.Header.Set("X-Real-IP", "198.51.100.2")
	require.Equal(t, "198.51.100.2", ClientIP(req))

	require.Empty(t, ClientIP(nil))
}
