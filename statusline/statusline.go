// Package statusline resolves an HTTP status code to the status line
// ASGIToWSGI hands to start_response ("<code> <phrase>").
//
// This is the one component in the module built on the standard library
// rather than a pack dependency: net/http.StatusText already carries the
// full IANA status-code registry and none of the example repos ship (or
// need) a separate one — gorox's own httpx status-code handling
// (hemi/web_general.go) builds its phrase table by hand for the same
// reason, so replicating net/http.StatusText by hand here would just be
// the same table twice.
package statusline

import (
	"net/http"
	"strconv"
)

// Phrase returns the IANA reason phrase for code, or "" if code is
// unrecognized.
func Phrase(code int) string {
	return http.StatusText(code)
}

// Line formats the "<code> <phrase>" status line ASGIToWSGI's
// start_response expects. Unknown codes produce "<code> ".
func Line(code int) string {
	phrase := Phrase(code)
	if phrase == "" {
		return strconv.Itoa(code) + " "
	}
	return strconv.Itoa(code) + " " + phrase
}
