package wire

import (
	"testing"

	"github.com/loopbridge/loopbridge/asgiapp"
	"github.com/loopbridge/loopbridge/wsgiapp"
)

func TestScopeToEnvironBasics(t *testing.T) {
	scope := &asgiapp.Scope{
		Type:        asgiapp.ScopeHTTP,
		HTTPVersion: "1.1",
		Method:      "GET",
		Scheme:      "https",
		Path:        "/app/widgets",
		QueryString: []byte("id=7"),
		RootPath:    "/app",
		Headers: []asgiapp.HeaderField{
			{Name: []byte("host"), Value: []byte("example.com")},
			{Name: []byte("accept"), Value: []byte("text/html")},
			{Name: []byte("accept"), Value: []byte("application/json")},
			{Name: []byte("content-type"), Value: []byte("application/json")},
			{Name: []byte("x_weird"), Value: []byte("should be dropped")},
		},
		Client: &asgiapp.Addr{Host: "203.0.113.5", Port: 54321},
		Server: &asgiapp.Addr{Host: "example.com", Port: 443},
	}

	env, err := ScopeToEnviron(scope)
	if err != nil {
		t.Fatalf("ScopeToEnviron: %v", err)
	}

	want := map[string]any{
		wsgiapp.KeyRequestMethod:  "GET",
		wsgiapp.KeyScriptName:     "/app",
		wsgiapp.KeyPathInfo:       "/widgets",
		wsgiapp.KeyQueryString:    "id=7",
		wsgiapp.KeyServerName:     "example.com",
		wsgiapp.KeyServerPort:     "443",
		wsgiapp.KeyServerProtocol: "HTTP/1.1",
		wsgiapp.KeyRemoteAddr:     "203.0.113.5",
		wsgiapp.KeyRemotePort:     "54321",
		wsgiapp.KeyURLScheme:      "https",
		"HTTP_HOST":               "example.com",
		"HTTP_ACCEPT":             "text/html, application/json",
		"CONTENT_TYPE":            "application/json",
	}
	for k, v := range want {
		if got := env[k]; got != v {
			t.Errorf("env[%q] = %v, want %v", k, got, v)
		}
	}
	if _, ok := env["HTTP_X_WEIRD"]; ok {
		t.Error("header with underscore in name should have been dropped, not folded")
	}
}

func TestScopeToEnvironRejectsNonHTTP(t *testing.T) {
	_, err := ScopeToEnviron(&asgiapp.Scope{Type: asgiapp.ScopeLifespan})
	if err == nil {
		t.Fatal("expected an error for a non-http scope")
	}
}

func TestEnvironToScopeBasics(t *testing.T) {
	env := wsgiapp.Environ{
		wsgiapp.KeyRequestMethod:  "POST",
		wsgiapp.KeyScriptName:     "/app",
		wsgiapp.KeyPathInfo:       "/widgets",
		wsgiapp.KeyQueryString:    "id=7",
		wsgiapp.KeyServerName:     "example.com",
		wsgiapp.KeyServerPort:     "443",
		wsgiapp.KeyServerProtocol: "HTTP/1.1",
		wsgiapp.KeyRemoteAddr:     "203.0.113.5",
		wsgiapp.KeyRemotePort:     "54321",
		wsgiapp.KeyURLScheme:      "https",
		wsgiapp.KeyContentType:    "application/json",
		"HTTP_USER_AGENT":         "test-agent/1.0",
	}

	scope, err := EnvironToScope(env)
	if err != nil {
		t.Fatalf("EnvironToScope: %v", err)
	}
	if scope.Method != "POST" || scope.Path != "/app/widgets" || scope.HTTPVersion != "1.1" {
		t.Fatalf("scope = %+v", scope)
	}
	if scope.Server == nil || scope.Server.Host != "example.com" || scope.Server.Port != 443 {
		t.Fatalf("scope.Server = %+v", scope.Server)
	}

	found := false
	for _, h := range scope.Headers {
		if string(h.Name) == "user-agent" && string(h.Value) == "test-agent/1.0" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a user-agent header, got %+v", scope.Headers)
	}
}
