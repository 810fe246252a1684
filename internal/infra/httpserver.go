package infra

import (
	"context"
	"net/http"
	"time"
)

// readHeaderTimeout bounds how long a client may take to send request
// headers, independent of the configurable body timeouts.
const readHeaderTimeout = 5 * time.Second

// HTTPServer owns the application's http.Server lifecycle.
type HTTPServer struct {
	srv *http.Server
}

// NewHTTPServer builds the server for handler on the configured port,
// applying the timeouts from cfg.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{srv: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}}
}

// Start serves requests until Shutdown is called or the listener fails.
func (s *HTTPServer) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and drains in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
