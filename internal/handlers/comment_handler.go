package handlers

import (
	"net/http"

	"github.com/anonto42/blog/backend/internal/middleware"
	"github.com/anonto42/blog/backend/internal/models"
	"github.com/anonto42/blog/backend/internal/repositories"
	"github.com/anonto42/blog/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postService       *services.PostService // To verify the post exists
	logger            *zap.SugaredLogger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postService *services.PostService, logger *zap.SugaredLogger) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postService:       postService,
		logger:            logger,
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/:id/comments", h.CreateComment, auth)
	g.GET("/:id/comments", h.GetCommentsByPostID)
}

// CreateComment creates a new comment on a post
func (h *CommentHandler) CreateComment(c echo.Context) error {
	postID := c.Param("id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	// Verify post exists
	post, err := h.postService.GetByID(c.Request().Context(), postID)
	if err != nil {
		return httpError(h.logger, err)
	}

	comment := &models.Comment{
		PostID:     post.ID.Hex(),
		UserID:     middleware.Identity(c),
		AuthorName: req.AuthorName,
		Content:    req.Content,
	}

	if err := h.commentRepository.CreateComment(c.Request().Context(), comment); err != nil {
		return httpError(h.logger, err)
	}

	return c.JSON(http.StatusCreated, comment)
}

// GetCommentsByPostID retrieves all comments for a specific post
func (h *CommentHandler) GetCommentsByPostID(c echo.Context) error {
	post, err := h.postService.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(h.logger, err)
	}

	comments, err := h.commentRepository.GetCommentsByPostID(c.Request().Context(), post.ID.Hex())
	if err != nil {
		return httpError(h.logger, err)
	}

	return c.JSON(http.StatusOK, comments)
}
