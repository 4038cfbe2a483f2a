// Utilities for rendering API requests as cURL commands.
package shared

import (
	"fmt"
	"strings"
)

// BuildCurlCommand renders an authenticated GET as a copy-pasteable curl
// invocation, for reproducing an api command's request outside the tool.
func BuildCurlCommand(rawURL, token string) string {
	var b strings.Builder
	b.WriteString("curl")

	if token != "" {
		b.WriteString(" -H ")
		b.WriteString(shellQuote("Authorization: Bearer " + token))
	}

	b.WriteString(" ")
	b.WriteString(shellQuote(rawURL))
	return b.String()
}

// RedactToken shortens a bearer token for log output, keeping enough of each
// end to recognize it.
func RedactToken(token string) string {
	if len(token) <= 12 {
		return strings.Repeat("*", len(token))
	}
	return fmt.Sprintf("%s…%s", token[:6], token[len(token)-4:])
}

// shellQuote wraps s in single quotes, escaping embedded single quotes so the
// result survives POSIX shells.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
