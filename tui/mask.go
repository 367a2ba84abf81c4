package tui

import (
	"net/url"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// Mask keeps the first half of s and replaces the rest with asterisks.
func Mask(s string) string {
	switch n := len(s); n {
	case 0:
		return s
	case 1:
		return "*"
	default:
		return s[:n/2] + strings.Repeat("*", n-n/2)
	}
}

// MaskURL masks the credentials, path and query values of a connection URL,
// leaving the scheme and host readable.
func MaskURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", errors.Wrap(err, "parsing url")
	}
	var b strings.Builder
	b.WriteString(u.Scheme + "://")
	if u.User != nil {
		b.WriteString(Mask(u.User.Username()))
		if pass, ok := u.User.Password(); ok {
			b.WriteString(":" + Mask(pass))
		}
		b.WriteString("@")
	}
	b.WriteString(u.Host)
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		b.WriteString("/" + Mask(p))
	}
	q := u.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for i, k := range keys {
		if i == 0 {
			b.WriteString("?")
		} else {
			b.WriteString("&")
		}
		b.WriteString(k + "=" + Mask(strings.Join(q[k], ",")))
	}
	return b.String(), nil
}

// MaskValue masks URLs with MaskURL and everything else with Mask.
func MaskValue(s string) string {
	if strings.Contains(s, "://") {
		if masked, err := MaskURL(s); err == nil {
			return masked
		}
	}
	return Mask(s)
}
