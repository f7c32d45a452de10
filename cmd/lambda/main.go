package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"resume-scorer/internal/bootstrap"
	"resume-scorer/internal/shared/config"
	"resume-scorer/internal/shared/server/respond"
	"resume-scorer/internal/shared/telemetry"
)

// coldStart builds the app once per execution environment. A failed build is
// retried on the next invocation. The app is never closed; the runtime freezes
// and reaps the process.
type coldStart struct {
	mu    sync.Mutex
	proxy *ginadapter.GinLambdaV2
	build func(ctx context.Context) (*bootstrap.App, error)
}

func (s *coldStart) ensure(ctx context.Context) *ginadapter.GinLambdaV2 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proxy != nil {
		return s.proxy
	}
	app, err := s.build(ctx)
	if err != nil {
		telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": err})
		return nil
	}
	s.proxy = ginadapter.NewV2(app.Router)
	return s.proxy
}

func (s *coldStart) handle(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	proxy := s.ensure(ctx)
	if proxy == nil {
		return unavailable(), nil
	}
	return proxy.ProxyWithContext(ctx, req)
}

func unavailable() events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.ErrorResponse{Error: respond.ErrorBody{
		Code:    "service_unavailable",
		Message: "service failed to start",
	}})
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusServiceUnavailable,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func buildApp(ctx context.Context) (*bootstrap.App, error) {
	cfg := config.Load()
	if err := telemetry.Init(cfg.Env); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return bootstrap.Build(ctx, cfg)
}

func main() {
	s := &coldStart{build: buildApp}
	lambda.Start(s.handle)
}
