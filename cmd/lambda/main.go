package main

import (
	"context"

	"github.com/ammiranda/feed_service/internal/app"
	"github.com/ammiranda/feed_service/internal/lambda"
	"github.com/ammiranda/feed_service/logger"

	awslambda "github.com/aws/aws-lambda-go/lambda"
)

func main() {
	ctx := context.Background()

	a, err := app.Bootstrap(ctx)
	if err != nil {
		logger.New().Fatal(err, "failed to bootstrap service")
	}

	if err := a.Load(ctx); err != nil {
		a.Log.Fatal(err, "failed to load feeds")
	}
	if err := a.InitCache(); err != nil {
		a.Log.Fatal(err, "failed to initialize cache")
	}

	handler := lambda.NewHandler(a.Service, a.Log)

	awslambda.Start(handler.Handle)
}
