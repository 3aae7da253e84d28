package handler

import (
	"net/http"
	"sync"
	"taskboard/config"
	"taskboard/di"
	"taskboard/shared/logger"
)

var (
	once   sync.Once
	server http.Handler
)

// Handler is the serverless entry point. The router is built once per instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.Get()

		logger.InitLogger()

		logger.SetLogLevel(cfg)

		server = di.InitializeService().Handler()
	})

	server.ServeHTTP(w, r)
}
