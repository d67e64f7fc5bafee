package main

import (
	"context"

	"github.com/ammiranda/feed_service/handlers"
	"github.com/ammiranda/feed_service/internal/app"
	"github.com/ammiranda/feed_service/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	ctx := context.Background()

	a, err := app.Bootstrap(ctx)
	if err != nil {
		logger.New().Fatal(err, "failed to bootstrap service")
	}
	defer a.Close(ctx)

	// The service cannot run without its hierarchy
	if err := a.Load(ctx); err != nil {
		a.Log.Fatal(err, "failed to load feeds")
	}

	if err := a.InitCache(); err != nil {
		a.Log.Fatal(err, "failed to initialize cache")
	}

	treeHandler := handlers.NewTreeHandler(a.Service, a.Log)

	r := gin.Default()
	treeHandler.RegisterRoutes(r.Group("/api"))

	a.Log.Zerolog().Info().Str("addr", a.Config.HTTPAddr).Msg("starting feed service")
	if err := r.Run(a.Config.HTTPAddr); err != nil {
		a.Log.Fatal(err, "failed to start server")
	}
}
