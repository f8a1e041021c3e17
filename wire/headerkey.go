package wire

import "strings"

// httpPrefix mirrors the teacher's fcgiBytesHTTP_ constant
// (hemi/web_proxy_fcgi.go): every ordinary header becomes HTTP_<NAME> with
// dashes turned to underscores, except the two CGI variables that predate
// the HTTP_ convention.
const httpPrefix = "HTTP_"

// environKeyForHeader turns a lower-cased header name into its CGI/WSGI
// environ key. ok is false for a header whose name already contains an
// underscore: folding it into HTTP_ form would make it indistinguishable
// from a dash-separated header, the same ambiguity the teacher's
// _addHTTPParam sidesteps by skipping header.isUnderscore() names.
func environKeyForHeader(name string) (key string, ok bool) {
	if strings.IndexByte(name, '_') >= 0 {
		return "", false
	}
	switch name {
	case "content-type":
		return "CONTENT_TYPE", true
	case "content-length":
		return "CONTENT_LENGTH", true
	}
	var b strings.Builder
	b.Grow(len(httpPrefix) + len(name))
	b.WriteString(httpPrefix)
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c == '-' {
			c = '_'
		} else if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		b.WriteByte(c)
	}
	return b.String(), true
}

// headerNameForEnvironKey is the inverse of environKeyForHeader's HTTP_
// branch: HTTP_USER_AGENT -> user-agent. Dashes and underscores are
// indistinguishable once folded into HTTP_ form, so this always produces
// the dash form; a handful of headers that legitimately contain an
// underscore cannot round-trip through the environ and were already
// rejected by environKeyForHeader on the way in.
func headerNameForEnvironKey(key string) string {
	name := strings.ToLower(strings.TrimPrefix(key, httpPrefix))
	return strings.ReplaceAll(name, "_", "-")
}
