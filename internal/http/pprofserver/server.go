package pprofserver

import (
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Config stores debug server settings.
type Config struct {
	User string
	Pass string
}

// Handler serves chi's profiler under /debug. Loopback clients are let through,
// everyone else needs basic auth, and without configured credentials remote access is closed.
func Handler(cfg Config) http.Handler {
	r := chi.NewRouter()
	r.Use(guard(cfg))
	r.Mount("/debug", middleware.Profiler())
	return r
}

func guard(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		authed := next
		if cfg.User != "" && cfg.Pass != "" {
			authed = middleware.BasicAuth("pprof", map[string]string{cfg.User: cfg.Pass})(next)
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case isLoopback(r.RemoteAddr):
				next.ServeHTTP(w, r)
			case cfg.User == "" || cfg.Pass == "":
				w.Header().Set("WWW-Authenticate", `Basic realm="pprof"`)
				http.Error(w, "unauthorized", http.StatusUnauthorized)
			default:
				authed.ServeHTTP(w, r)
			}
		})
	}
}

func isLoopback(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	ip := net.ParseIP(strings.TrimSpace(host))
	return ip != nil && ip.IsLoopback()
}
