package handlers

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/ammiranda/feed_service/cache"
	"github.com/ammiranda/feed_service/feeds"
	"github.com/ammiranda/feed_service/logger"
	"github.com/ammiranda/feed_service/models"
	"github.com/ammiranda/feed_service/opml"
	"github.com/ammiranda/feed_service/repository"

	"github.com/gin-gonic/gin"
)

// TreeHandler handles feed hierarchy HTTP requests
type TreeHandler struct {
	service *feeds.ServiceRoot
	log     *logger.Logger
}

// NewTreeHandler creates a new TreeHandler instance
func NewTreeHandler(service *feeds.ServiceRoot, log *logger.Logger) *TreeHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &TreeHandler{
		service: service,
		log:     log.WithComponent("tree_handler"),
	}
}

// RegisterRoutes mounts the handler below group
func (h *TreeHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/tree", h.GetTree)
	group.POST("/categories", h.CreateCategory)
	group.POST("/feeds", h.CreateFeed)
	group.POST("/import", h.Import)
	group.GET("/export", h.Export)
}

// StatusFor maps service errors to HTTP status codes
func StatusFor(err error) int {
	switch {
	case errors.Is(err, repository.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicateTitle):
		return http.StatusConflict
	case errors.Is(err, repository.ErrInvalidInput),
		errors.Is(err, models.ErrCannotHoldChildren),
		errors.Is(err, opml.ErrInvalidDocument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *TreeHandler) fail(c *gin.Context, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error(err, "request failed")
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// GetTree returns the whole feed hierarchy
func (h *TreeHandler) GetTree(c *gin.Context) {
	if cachedTree, found := cache.GetTree(); found {
		c.JSON(http.StatusOK, cachedTree)
		return
	}

	tree := h.service.Snapshot()
	cache.SetTree(tree)
	c.JSON(http.StatusOK, tree)
}

// CreateCategory adds a category below parentId or at the top level
func (h *TreeHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.service.AddCategory(c.Request.Context(), models.ParentOrRoot(req.ParentID), req.Title, req.Description)
	if err != nil {
		h.fail(c, err)
		return
	}

	// Invalidate cache since we modified the tree
	cache.InvalidateCache()

	c.JSON(http.StatusCreated, gin.H{
		"id":       id,
		"title":    req.Title,
		"parentId": models.ParentOrRoot(req.ParentID),
	})
}

// CreateFeed adds a feed below parentId or at the top level
func (h *TreeHandler) CreateFeed(c *gin.Context) {
	var req models.CreateFeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	feed := models.NewFeed(0, req.Title, req.URL, models.FeedType(req.Type))
	feed.Description = req.Description
	feed.Encoding = req.Encoding

	id, err := h.service.AddFeed(c.Request.Context(), models.ParentOrRoot(req.ParentID), feed)
	if err != nil {
		h.fail(c, err)
		return
	}

	cache.InvalidateCache()

	c.JSON(http.StatusCreated, gin.H{
		"id":       id,
		"title":    req.Title,
		"parentId": models.ParentOrRoot(req.ParentID),
	})
}

// Import merges the checked outlines of an OPML document into the hierarchy
func (h *TreeHandler) Import(c *gin.Context) {
	var req models.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ok, message, err := h.service.ImportOPML(c.Request.Context(), strings.NewReader(req.OPML), req.Unchecked)
	if err != nil {
		h.fail(c, err)
		return
	}

	cache.InvalidateCache()

	c.JSON(http.StatusOK, models.ImportResponse{Success: ok, Message: message})
}

// Export returns the hierarchy as an OPML 2.0 document
func (h *TreeHandler) Export(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.service.ExportOPML(&buf); err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="feeds.opml"`)
	c.Data(http.StatusOK, "text/x-opml; charset=utf-8", buf.Bytes())
}
