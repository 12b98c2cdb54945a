package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	cases := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"socket address", "10.0.0.1:51234", "", "10.0.0.1"},
		{"forwarded single", "10.0.0.254:80", "203.0.113.9", "203.0.113.9"},
		{"forwarded chain uses first hop", "10.0.0.254:80", "203.0.113.9, 10.0.0.254, 10.0.0.1", "203.0.113.9"},
		{"forwarded with spaces", "10.0.0.254:80", "  203.0.113.9 , 10.0.0.254", "203.0.113.9"},
		{"no port", "10.0.0.1", "", "10.0.0.1"},
		{"ipv6", "[::1]:51234", "", "::1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			assert.Equal(t, tc.want, ClientIP(req))
		})
	}
}

func TestIDFromQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?id=abc", nil)
	id, err := IDFromQuery(req, "id")
	assert.NoError(t, err)
	assert.Equal(t, "abc", id)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = IDFromQuery(req, "id")
	assert.Error(t, err)
}
