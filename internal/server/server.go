// Package server implements the sonika HTTP service: the home page, the tune
// listing and download endpoints, and the static asset tree.
package server

import (
	"context"
	"io/fs"
	"net"
	"net/http"
	"os"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"golang.org/x/net/netutil"

	"github.com/oduortoni/sonika/internal/catalog"
	"github.com/oduortoni/sonika/internal/config"
	"github.com/oduortoni/sonika/internal/logging"
)

// Server serves the tune catalog and static assets. It holds no per-request
// state; every handler reads the filesystem afresh.
type Server struct {
	// config is the server configuration.
	config *config.Config
	// catalog lists and opens tunes.
	catalog *catalog.Catalog
	// site is the static directory, holding the home page and the /static/
	// tree.
	site fs.FS
	// logger is the server logger.
	logger *logging.Logger
	// access receives one line per request.
	access *logging.Logger
	// handler is the fully wrapped request handler.
	handler http.Handler
}

// New creates a server for cfg. The configuration is assumed to be valid.
func New(cfg *config.Config, logger *logging.Logger) *Server {
	return newServer(cfg, logger, os.DirFS(cfg.StaticDir), os.DirFS(cfg.TunesDir))
}

// newServer creates a server reading static assets from site and tunes from
// tunes.
func newServer(cfg *config.Config, logger *logging.Logger, site, tunes fs.FS) *Server {
	s := &Server{
		config: cfg,
		catalog: catalog.New(catalog.Options{
			Dir:       cfg.TunesDir,
			Extension: cfg.Extension,
			FS:        tunes,
		}),
		site:   site,
		logger: logger,
		access: logger.Sublogger("access"),
	}

	var handler http.Handler = s.routes()
	if len(cfg.CORSOrigins) > 0 {
		handler = cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet},
		}).Handler(handler)
	}
	s.handler = s.withRequestID(s.withAccessLog(handler))

	return s
}

// routes builds the route table.
func (s *Server) routes() *httprouter.Router {
	router := httprouter.New()
	router.PanicHandler = s.recoverPanic

	router.GET("/", s.serveHome)
	router.GET("/tunes", s.listTunes)
	router.GET("/tunes/:filename", s.serveTune)
	router.ServeFiles("/static/*filepath", s.staticFileSystem())

	return router
}

// Handler returns the request handler, including middleware.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Listen opens the listening socket, applying the connection limit if one is
// configured.
func (s *Server) Listen() (net.Listener, error) {
	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return nil, errors.Wrap(err, "unable to listen")
	}
	if s.config.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, s.config.MaxConnections)
	}
	return listener, nil
}

// Serve serves requests on listener until ctx is cancelled, then shuts down
// gracefully, waiting up to the configured shutdown timeout for in-flight
// requests. The listener is closed on return.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{Handler: s.handler}

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- httpServer.Serve(listener)
	}()

	select {
	case err := <-serverErrors:
		return errors.Wrap(err, "server terminated")
	case <-ctx.Done():
	}

	s.logger.Println("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout.Std())
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		httpServer.Close()
		return errors.Wrap(err, "unable to shut down gracefully")
	}

	return nil
}
