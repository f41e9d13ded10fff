package database

import (
	"net/url"
	"strings"
)

// WithDatabaseName points a server URL at the named database.
// sslmode=disable is added unless the URL already chooses a mode.
// An empty name or an unparsable URL returns baseURL untouched.
func WithDatabaseName(baseURL, name string) string {
	if name == "" {
		return baseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}

	u.Path = "/" + strings.Trim(name, "/")
	query := u.Query()
	if !query.Has("sslmode") {
		query.Set("sslmode", "disable")
	}
	u.RawQuery = query.Encode()
	return u.String()
}
