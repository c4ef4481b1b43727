package handlers

import (
	"net/http"

	"github.com/anonto42/blog/backend/internal/middleware"
	"github.com/anonto42/blog/backend/internal/models"
	"github.com/anonto42/blog/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const postDeletedMessage = "Post has been deleted!"

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	postService *services.PostService
	logger      *zap.SugaredLogger
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postService *services.PostService, logger *zap.SugaredLogger) *PostHandler {
	return &PostHandler{
		postService: postService,
		logger:      logger,
	}
}

// RegisterPostRoutes registers post-related routes; auth guards the mutating ones
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/create", h.CreatePost, auth)
	g.GET("", h.GetPosts)
	g.GET("/", h.GetPosts)
	g.GET("/user/:userId", h.GetUserPosts)
	g.GET("/:id", h.GetPost)
	g.PUT("/:id", h.UpdatePost, auth)
	g.DELETE("/:id", h.DeletePost, auth)
	g.PUT("/:id/like", h.ToggleLike, auth)
}

// CreatePost creates a new post from the request body as given
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	post, err := h.postService.Create(c.Request().Context(), middleware.Identity(c), req)
	if err != nil {
		return httpError(h.logger, err)
	}

	return c.JSON(http.StatusOK, post)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postService.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpError(h.logger, err)
	}

	return c.JSON(http.StatusOK, post)
}

// GetPosts lists all posts, filtered by title when ?search= is given
func (h *PostHandler) GetPosts(c echo.Context) error {
	posts, err := h.postService.List(c.Request().Context(), c.QueryParam("search"))
	if err != nil {
		return httpError(h.logger, err)
	}

	return c.JSON(http.StatusOK, posts)
}

// GetUserPosts lists the posts of one author
func (h *PostHandler) GetUserPosts(c echo.Context) error {
	posts, err := h.postService.ListByAuthor(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return httpError(h.logger, err)
	}

	return c.JSON(http.StatusOK, posts)
}

// UpdatePost updates the supplied fields of an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}

	post, err := h.postService.Update(c.Request().Context(), middleware.Identity(c), c.Param("id"), req)
	if err != nil {
		return httpError(h.logger, err)
	}

	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post and its comments
func (h *PostHandler) DeletePost(c echo.Context) error {
	if err := h.postService.Delete(c.Request().Context(), middleware.Identity(c), c.Param("id")); err != nil {
		return httpError(h.logger, err)
	}

	return c.JSON(http.StatusOK, postDeletedMessage)
}

// ToggleLike likes or unlikes a post for the authenticated user
func (h *PostHandler) ToggleLike(c echo.Context) error {
	post, err := h.postService.ToggleLike(c.Request().Context(), middleware.Identity(c), c.Param("id"))
	if err != nil {
		return httpError(h.logger, err)
	}

	return c.JSON(http.StatusOK, post)
}
