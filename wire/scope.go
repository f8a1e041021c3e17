// Package wire translates between the ASGI http Scope and the WSGI
// Environ, the way the teacher's FastCGI gateway translates an incoming
// HTTP request into CGI meta- and HTTP-params (hemi/web_proxy_fcgi.go,
// fcgiRequest.proxyCopyHeaders / _addMetaParam / _addHTTPParam). Both
// translations are pure and carry no adapter state: wsgi.input, wsgi.errors
// and asgi.scope's Receive/Send are attached by the adapters that call
// into this package, not by wire itself.
package wire

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/loopbridge/loopbridge/asgiapp"
	"github.com/loopbridge/loopbridge/bridgeerr"
	"github.com/loopbridge/loopbridge/wsgiapp"
)

// ScopeToEnviron builds the WSGI environ a WSGIToASGI adapter hands to the
// wrapped WSGI application for an incoming ASGI http scope. The caller is
// responsible for setting wsgiapp.KeyInput, KeyErrors and KeyASGIScope
// afterwards, since those carry live adapter state this package doesn't
// own.
func ScopeToEnviron(scope *asgiapp.Scope) (wsgiapp.Environ, error) {
	if scope.Type != asgiapp.ScopeHTTP {
		return nil, bridgeerr.ErrUnsupportedScope
	}

	env := wsgiapp.Environ{
		wsgiapp.KeyRequestMethod:  strings.ToUpper(scope.Method),
		wsgiapp.KeyServerProtocol: "HTTP/" + scope.HTTPVersion,
		wsgiapp.KeyURLScheme:      scope.Scheme,
		wsgiapp.KeyMultithread:    true,
		wsgiapp.KeyMultiprocess:   false,
		wsgiapp.KeyRunOnce:        false,
	}

	scriptName := scope.RootPath
	path := scope.Path
	if len(scope.RawPath) > 0 {
		if decoded, err := url.PathUnescape(string(scope.RawPath)); err == nil {
			path = decoded
		}
	}
	if scriptName != "" && strings.HasPrefix(path, scriptName) {
		path = path[len(scriptName):]
	}
	env[wsgiapp.KeyScriptName] = scriptName
	env[wsgiapp.KeyPathInfo] = path
	env[wsgiapp.KeyQueryString] = string(scope.QueryString)

	if scope.Server != nil {
		env[wsgiapp.KeyServerName] = scope.Server.Host
		env[wsgiapp.KeyServerPort] = strconv.Itoa(scope.Server.Port)
	} else {
		env[wsgiapp.KeyServerName] = "localhost"
		env[wsgiapp.KeyServerPort] = "80"
	}
	if scope.Client != nil {
		env[wsgiapp.KeyRemoteAddr] = scope.Client.Host
		env[wsgiapp.KeyRemotePort] = strconv.Itoa(scope.Client.Port)
	}

	joined := make(map[string][]string, len(scope.Headers))
	order := make([]string, 0, len(scope.Headers))
	for _, h := range scope.Headers {
		name := strings.ToLower(string(h.Name))
		key, ok := environKeyForHeader(name)
		if !ok {
			continue
		}
		if _, seen := joined[key]; !seen {
			order = append(order, key)
		}
		joined[key] = append(joined[key], string(h.Value))
	}
	for _, key := range order {
		env[key] = strings.Join(joined[key], ", ")
	}

	return env, nil
}

// EnvironToScope builds the ASGI http scope an ASGIToWSGI adapter hands to
// the wrapped ASGI application for an incoming WSGI environ. It sets
// scope.WSGIEnviron to env itself (the same map, not a copy); the caller
// owns the Receive/Send callables, which live outside the Scope.
func EnvironToScope(env wsgiapp.Environ) (*asgiapp.Scope, error) {
	scope := &asgiapp.Scope{
		Type:        asgiapp.ScopeHTTP,
		Method:      stringOf(env[wsgiapp.KeyRequestMethod]),
		Scheme:      stringOf(env[wsgiapp.KeyURLScheme]),
		Path:        stringOf(env[wsgiapp.KeyScriptName]) + stringOf(env[wsgiapp.KeyPathInfo]),
		QueryString: []byte(stringOf(env[wsgiapp.KeyQueryString])),
		RootPath:    stringOf(env[wsgiapp.KeyScriptName]),
		WSGIEnviron: map[string]any(env),
	}

	if proto := stringOf(env[wsgiapp.KeyServerProtocol]); strings.HasPrefix(proto, "HTTP/") {
		scope.HTTPVersion = proto[len("HTTP/"):]
	}

	if host := stringOf(env[wsgiapp.KeyServerName]); host != "" {
		port, _ := strconv.Atoi(stringOf(env[wsgiapp.KeyServerPort]))
		scope.Server = &asgiapp.Addr{Host: host, Port: port}
	}
	if host := stringOf(env[wsgiapp.KeyRemoteAddr]); host != "" {
		port, _ := strconv.Atoi(stringOf(env[wsgiapp.KeyRemotePort]))
		scope.Client = &asgiapp.Addr{Host: host, Port: port}
	}

	if ct := stringOf(env[wsgiapp.KeyContentType]); ct != "" {
		scope.Headers = append(scope.Headers, asgiapp.HeaderField{Name: []byte("content-type"), Value: []byte(ct)})
	}
	if cl := stringOf(env[wsgiapp.KeyContentLength]); cl != "" {
		scope.Headers = append(scope.Headers, asgiapp.HeaderField{Name: []byte("content-length"), Value: []byte(cl)})
	}
	for key, v := range env {
		if !strings.HasPrefix(key, httpPrefix) {
			continue
		}
		scope.Headers = append(scope.Headers, asgiapp.HeaderField{
			Name:  []byte(headerNameForEnvironKey(key)),
			Value: []byte(stringOf(v)),
		})
	}

	return scope, nil
}

func stringOf(v any) string {
	s, _ := v.(string)
	return s
}
