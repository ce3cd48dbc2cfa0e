package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIPHeaderOrder(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name: "forwarded for wins",
			headers: map[string]string{
				"X-Forwarded-For":  "203.0.113.5, 10.0.0.1",
				"X-Real-IP":        "198.51.100.2",
				"CF-Connecting-IP": "192.0.2.9",
			},
			want: "203.0.113.5",
		},
		{
			name: "loopback forwarded for falls through",
			headers: map[string]string{
				"X-Forwarded-For": "::1",
				"X-Real-IP":       "198.51.100.2",
			},
			want: "198.51.100.2",
		},
		{
			name: "real ip before cloudflare",
			headers: map[string]string{
				"X-Real-IP":        "198.51.100.2",
				"CF-Connecting-IP": "192.0.2.9",
			},
			want: "198.51.100.2",
		},
		{
			name:    "cloudflare last",
			headers: map[string]string{"CF-Connecting-IP": "192.0.2.9"},
			want:    "192.0.2.9",
		},
		{
			name:    "sentinel when nothing present",
			headers: nil,
			want:    UnknownAddress,
		},
		{
			name:    "ipv6 canonicalized",
			headers: map[string]string{"X-Forwarded-For": "2001:DB8:0:0::1"},
			want:    "2001:db8::1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("POST", "/api/join-waitlist", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tc.want, ClientIP(req))
		})
	}
}

func TestNormalizeIP(t *testing.T) {
	require.Equal(t, "203.0.113.5", NormalizeIP(" 203.0.113.5:4431 "))
	require.Equal(t, "2001:db8::1", NormalizeIP("[2001:db8::1]:443"))
	require.Equal(t, "10.0.0.1", NormalizeIP("::ffff:10.0.0.1"))
	require.Equal(t, "unknown-host", NormalizeIP("Unknown-Host"))
	require.Empty(t, NormalizeIP("   "))
}

func TestTrustedClientIP(t *testing.T) {
	trusted := []string{"10.0.0.0/8"}

	req := httptest.NewRequest("POST", "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("X-Forwarded-For", "203.0.113.5")
	require.Equal(t, "203.0.113.5", TrustedClientIP(req, trusted))

	req.RemoteAddr = "198.51.100.7:5555"
	require.Equal(t, "198.51.100.7", TrustedClientIP(req, trusted))

	require.Equal(t, "203.0.113.5", TrustedClientIP(req, nil))
}

func TestIsAllowedIP(t *testing.T) {
	allowed := []string{"185.71.76.0/27", "not-a-cidr", "2a02:5180::/32"}
	require.True(t, IsAllowedIP("185.71.76.10", allowed))
	require.True(t, IsAllowedIP("2a02:5180::1", allowed))
	require.False(t, IsAllowedIP("185.71.77.10", allowed))
	require.False(t, IsAllowedIP("garbage", allowed))
}
