package curation

import (
	"net/url"
	"strings"
)

// trackingParams are query parameters that identify campaigns rather than
// content. They are stripped before URLs are compared for deduplication.
var trackingParams = map[string]bool{
	"fbclid":  true,
	"gclid":   true,
	"igshid":  true,
	"mc_cid":  true,
	"mc_eid":  true,
	"ref":     true,
	"ref_src": true,
	"source":  true,
	"cmpid":   true,
}

// NormalizeURL produces the deduplication key for a link: lowercased scheme
// and host, trailing slash stripped from the path, fragment dropped, and
// tracking query parameters removed. Remaining query parameters are kept in
// sorted order since some sites key articles on query ids. Unparseable input
// is returned trimmed, so it still dedupes against itself.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return raw
	}

	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")

	q := u.Query()
	for key := range q {
		if trackingParams[key] || strings.HasPrefix(strings.ToLower(key), "utm_") {
			q.Del(key)
		}
	}
	u.RawQuery = q.Encode() // Encode sorts keys

	return u.String()
}
