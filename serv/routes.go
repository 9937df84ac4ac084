package serv

import (
	"net/http"

	"github.com/go-chi/chi"
	"github.com/klauspost/compress/gzhttp"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

const (
	queryRoute    = "/api/v1/query"
	schemaRoute   = "/api/v1/schema"
	loadRoute     = "/api/v1/load"
	snapshotRoute = "/api/v1/snapshot"
	benchWSRoute  = "/api/v1/bench/ws"
	healthRoute   = "/health"
	metricsRoute  = "/metrics"
)

func routesHandler(s *Service) (http.Handler, error) {
	r := chi.NewRouter()

	r.Get(healthRoute, s.healthV1)
	r.Handle(metricsRoute, promhttp.HandlerFor(
		s.metrics.reg, promhttp.HandlerOpts{}))

	qh := http.HandlerFunc(s.apiV1Query)
	sh := http.HandlerFunc(s.apiV1Schema)

	var h1, h2 http.Handler = qh, sh

	if s.conf.HTTPGZip {
		gz, err := gzhttp.NewWrapper(gzhttp.CompressionLevel(6))
		if err != nil {
			return nil, err
		}
		h1 = gz(qh)
		h2 = gz(sh)
	}

	r.Post(queryRoute, h1.ServeHTTP)
	r.Get(schemaRoute, h2.ServeHTTP)
	r.Post(loadRoute, s.apiV1Load)
	r.Get(snapshotRoute, s.apiV1Snapshot)
	r.Get(benchWSRoute, s.apiV1BenchWS)

	var h http.Handler = r

	if len(s.conf.AllowedOrigins) != 0 {
		c := cors.New(cors.Options{
			AllowedOrigins:   s.conf.AllowedOrigins,
			AllowedHeaders:   s.conf.AllowedHeaders,
			AllowCredentials: true,
			Debug:            s.conf.DebugCORS,
		})
		h = c.Handler(h)
	}

	return setServerHeader(h, s.conf.AppName), nil
}

func setServerHeader(h http.Handler, name string) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", name)
		h.ServeHTTP(w, r)
	}
	return http.HandlerFunc(fn)
}
