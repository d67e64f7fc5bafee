package lambda

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/ammiranda/feed_service/cache"
	"github.com/ammiranda/feed_service/feeds"
	"github.com/ammiranda/feed_service/handlers"
	"github.com/ammiranda/feed_service/logger"
	"github.com/ammiranda/feed_service/models"

	"github.com/aws/aws-lambda-go/events"
)

// Handler represents the Lambda handler with its dependencies
type Handler struct {
	service *feeds.ServiceRoot
	log     *logger.Logger
}

// NewHandler creates a new Handler serving the hierarchy of service
func NewHandler(service *feeds.ServiceRoot, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		service: service,
		log:     log.WithComponent("lambda_handler"),
	}
}

// Handle processes API Gateway events
func (h *Handler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	switch {
	case request.HTTPMethod == http.MethodGet && request.Path == "/api/tree":
		return h.handleGetTree(ctx, request)
	case request.HTTPMethod == http.MethodPost && request.Path == "/api/import":
		return h.handleImport(ctx, request)
	default:
		return errorResponse(http.StatusNotFound, "Not found"), nil
	}
}

func (h *Handler) handleGetTree(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	tree, found := cache.GetTree()
	if !found {
		tree = h.service.Snapshot()
		cache.SetTree(tree)
	}
	return jsonResponse(http.StatusOK, tree), nil
}

func (h *Handler) handleImport(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	var req models.ImportRequest
	if err := json.Unmarshal([]byte(request.Body), &req); err != nil {
		return errorResponse(http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err)), nil
	}
	if err := req.Validate(); err != nil {
		return errorResponse(http.StatusBadRequest, err.Error()), nil
	}

	ok, message, err := h.service.ImportOPML(ctx, strings.NewReader(req.OPML), req.Unchecked)
	if err != nil {
		status := handlers.StatusFor(err)
		if status == http.StatusInternalServerError {
			h.log.Error(err, "import failed")
		}
		return errorResponse(status, err.Error()), nil
	}

	cache.InvalidateCache()

	return jsonResponse(http.StatusOK, models.ImportResponse{Success: ok, Message: message}), nil
}

func jsonResponse(status int, payload interface{}) events.APIGatewayProxyResponse {
	body, err := json.Marshal(payload)
	if err != nil {
		return errorResponse(http.StatusInternalServerError, fmt.Sprintf("Failed to marshal response: %v", err))
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func errorResponse(status int, message string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(map[string]string{"error": message})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}
