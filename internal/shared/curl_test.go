package shared

import (
	"strings"
	"testing"
)

func TestBuildCurlCommand(t *testing.T) {
	tt := []struct {
		name   string
		rawURL string
		token  string
		want   string
	}{
		{
			name:   "authenticated request",
			rawURL: "https://api.spotify.com/v1/me",
			token:  "token123",
			want:   `curl -H 'Authorization: Bearer token123' 'https://api.spotify.com/v1/me'`,
		},
		{
			name:   "no token omits the header",
			rawURL: "https://api.spotify.com/v1/me/playlists",
			token:  "",
			want:   `curl 'https://api.spotify.com/v1/me/playlists'`,
		},
		{
			name:   "query parameters survive quoting",
			rawURL: "https://api.spotify.com/v1/me/top/artists?limit=50&time_range=short_term",
			token:  "tok",
			want:   `curl -H 'Authorization: Bearer tok' 'https://api.spotify.com/v1/me/top/artists?limit=50&time_range=short_term'`,
		},
		{
			name:   "single quotes are escaped for the shell",
			rawURL: "https://api.spotify.com/v1/search?q=rock'n'roll",
			token:  "tok",
			want:   `curl -H 'Authorization: Bearer tok' 'https://api.spotify.com/v1/search?q=rock'\''n'\''roll'`,
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			got := BuildCurlCommand(tc.rawURL, tc.token)
			if got != tc.want {
				t.Errorf("BuildCurlCommand() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRedactToken(t *testing.T) {
	t.Run("long tokens keep both ends", func(t *testing.T) {
		token := "BQDaccesstokenwithplentyofcharacters1234"

		got := RedactToken(token)

		if !strings.HasPrefix(got, token[:6]) {
			t.Errorf("RedactToken() = %v, want prefix %v", got, token[:6])
		}
		if !strings.HasSuffix(got, token[len(token)-4:]) {
			t.Errorf("RedactToken() = %v, want suffix %v", got, token[len(token)-4:])
		}
		if strings.Contains(got, "tokenwithplenty") {
			t.Errorf("RedactToken() leaked the token middle: %v", got)
		}
	})

	t.Run("short tokens are fully masked", func(t *testing.T) {
		if got := RedactToken("abcdef"); got != "******" {
			t.Errorf("RedactToken() = %v, want ******", got)
		}
	})

	t.Run("empty token stays empty", func(t *testing.T) {
		if got := RedactToken(""); got != "" {
			t.Errorf("RedactToken() = %v, want empty", got)
		}
	})
}
