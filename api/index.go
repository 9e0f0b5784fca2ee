package handler

import (
	"context"
	"net/http"

	"github.com/wadjakorntonsri/ctrltab/pkg/app"
	"github.com/wadjakorntonsri/ctrltab/pkg/config"
)

var mux http.Handler

func init() {
	cfg := config.Load()
	logger := app.NewLogger(cfg)
	if err := app.CheckDefaults(cfg, logger); err != nil {
		panic(err)
	}

	// Note: On Vercel, a local sqlite file is ephemeral; point DATABASE_URL at Turso
	a, err := app.New(context.Background(), cfg, logger)
	if err != nil {
		panic(err)
	}
	if err := a.Bootstrap(context.Background()); err != nil {
		panic(err)
	}
	mux = a.Handler
}

// Handler is the entrypoint for Vercel
func Handler(w http.ResponseWriter, r *http.Request) {
	mux.ServeHTTP(w, r)
}
