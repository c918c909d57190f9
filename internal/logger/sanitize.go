package logger

import (
	"net/url"
	"strings"
)

// RedactDSN strips credentials from a connection URL so it can be logged
// at startup. Unparseable values are redacted wholesale.
func RedactDSN(dsn string) string {
	if dsn == "" {
		return ""
	}

	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		// Key/value DSNs ("host=... password=...") and malformed URLs
		if strings.Contains(dsn, "password=") || strings.Contains(dsn, "@") {
			return "[redacted]"
		}
		return dsn
	}

	if u.User != nil {
		if _, hasPassword := u.User.Password(); hasPassword {
			u.User = url.UserPassword(u.User.Username(), "xxxxx")
		}
	}

	return u.String()
}
