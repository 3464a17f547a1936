package chi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	logpkg "github.com/kailas-cloud/moviesearch/internal/logger"
)

func TestJSONRecoverer(t *testing.T) {
	panicking := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })
	h := JSONRecoverer(zap.NewNop())(panicking)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/movies", http.NoBody))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	if got := decodeBody[ErrorResponse](t, rr); got.Code != ErrorCodeInternalError {
		t.Errorf("code = %s", got.Code)
	}
}

func TestWideEvent_LogsOneLineWithContextLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	var ctxLogger *zap.Logger
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxLogger = logpkg.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	h := WideEvent(zap.New(core))(inner)

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/movies?search=x", http.NoBody))

	if logs.Len() != 1 {
		t.Fatalf("log lines = %d", logs.Len())
	}
	entry := logs.All()[0]
	fields := entry.ContextMap()
	if entry.Message != "http_request" || fields["status"] != int64(http.StatusTeapot) || fields["query"] != "search=x" {
		t.Errorf("entry = %s %v", entry.Message, fields)
	}
	if ctxLogger == nil || !ctxLogger.Core().Enabled(zap.InfoLevel) {
		t.Error("request logger not stored in context")
	}
}

func TestCORS(t *testing.T) {
	h := CORS([]string{"http://localhost:3000/"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/movies", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Errorf("allow origin = %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest(http.MethodGet, "/movies", http.NoBody)
	req.Header.Set("Origin", "http://evil.example")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("unknown origin must not be allowed")
	}

	req = httptest.NewRequest(http.MethodOptions, "/movies", http.NoBody)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d", rr.Code)
	}
}

func TestCORS_Wildcard(t *testing.T) {
	h := CORS([]string{"*"})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/movies", http.NoBody)
	req.Header.Set("Origin", "http://anything.example")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("allow origin = %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}
