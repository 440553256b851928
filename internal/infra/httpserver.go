package infra

import (
	"context"
	"net/http"
	"time"
)

// HTTPServer pairs the stdlib server with the timeout profile the API
// needs. Generation requests fan out to a slow remote backend, so the write
// timeout runs much longer than the read side.
type HTTPServer struct {
	srv *http.Server
}

// NewHTTPServer configures a server listening on the configured port.
func NewHTTPServer(cfg *Config, handler http.Handler) *HTTPServer {
	return &HTTPServer{srv: &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       cfg.HTTPReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.HTTPWriteTimeout,
		IdleTimeout:       cfg.HTTPIdleTimeout,
	}}
}

// Start serves requests until the listener fails or Shutdown is called.
func (s *HTTPServer) Start() error {
	return s.srv.ListenAndServe()
}

// Shutdown stops accepting connections and drains in-flight requests until
// ctx expires.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
