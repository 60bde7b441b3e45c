package httpserver

import (
	"net/http"
	"time"
)

// New builds the HTTP server for the local API. Requests are short JSON
// exchanges with an on-device client, so the read and write timeouts are
// tight; nothing long-polls or streams.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
