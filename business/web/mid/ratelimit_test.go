package mid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/ardanlabs/namegen/business/web/mid"
	"github.com/ardanlabs/namegen/foundation/web"
	"go.uber.org/zap"
)

func Test_RateLimit(t *testing.T) {
	log := zap.NewNop().Sugar()
	app := web.NewApp(make(chan os.Signal, 1), mid.Errors(log))

	h := func(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
		return web.Respond(ctx, w, nil, http.StatusNoContent)
	}
	app.Handle(http.MethodPost, "", "/send", h, mid.RateLimit(mid.NewLimiter(0.001, 2)))
	app.Handle(http.MethodPost, "", "/open", h, mid.RateLimit(mid.NewLimiter(0, 0)))

	call := func(path string, addr string) int {
		r := httptest.NewRequest(http.MethodPost, path, nil)
		r.RemoteAddr = addr
		w := httptest.NewRecorder()
		app.ServeHTTP(w, r)
		return w.Code
	}

	for i := range 2 {
		if code := call("/send", "10.0.0.1:5000"); code != http.StatusNoContent {
			t.Fatalf("Should allow call %d within the burst: %d", i, code)
		}
	}

	if code := call("/send", "10.0.0.1:5001"); code != http.StatusTooManyRequests {
		t.Logf("got: %d", code)
		t.Logf("exp: %d", http.StatusTooManyRequests)
		t.Fatalf("Should limit the client once the burst is spent.")
	}

	if code := call("/send", "10.0.0.2:5000"); code != http.StatusNoContent {
		t.Fatalf("Should track each client on its own: %d", code)
	}

	for range 5 {
		if code := call("/open", "10.0.0.1:5000"); code != http.StatusNoContent {
			t.Fatalf("Should not limit with a zero rate: %d", code)
		}
	}
}
