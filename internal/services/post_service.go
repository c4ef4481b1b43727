// Package services holds the post lifecycle: validation, ownership, cascade
// deletion of comments and the like toggle. Errors are the sentinel kinds
// from the models package so the HTTP layer can map them to status codes.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/blog/backend/internal/models"
	"github.com/anonto42/blog/backend/internal/repositories"
	"github.com/anonto42/blog/backend/validators"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Options tunes PostService policy
type Options struct {
	// EnforceOwnership restricts update and delete to the post's author
	EnforceOwnership bool
}

// PostService implements the post operations on top of the repositories
type PostService struct {
	posts    repositories.PostRepository
	comments repositories.CommentRepository
	validate *validator.Validate
	logger   *zap.SugaredLogger
	opts     Options
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository, comments repositories.CommentRepository, logger *zap.SugaredLogger, opts Options) *PostService {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &PostService{
		posts:    posts,
		comments: comments,
		validate: validators.New(),
		logger:   logger,
		opts:     opts,
	}
}

// Create stores the payload as a new post. Author fields are taken from the
// payload as given, not from the caller.
func (s *PostService) Create(ctx context.Context, caller string, req models.CreatePostRequest) (*models.Post, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	post := &models.Post{
		Title:       req.Title,
		Description: req.Description,
		Photo:       req.Photo,
		AuthorName:  req.AuthorName,
		AuthorID:    req.AuthorID,
		Categories:  req.Categories,
		Likes:       []string{},
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	s.logger.Debugw("post created", "post_id", post.ID.Hex(), "caller", caller)
	return post, nil
}

// Update replaces the supplied fields of a post. With ownership enforced the
// author check is part of the write itself.
func (s *PostService) Update(ctx context.Context, caller, id string, req models.UpdatePostRequest) (*models.Post, error) {
	if req.IsEmpty() {
		return nil, fmt.Errorf("%w: no fields to update", models.ErrValidation)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
	}

	return s.posts.UpdatePost(ctx, id, s.guard(caller), req)
}

// Delete removes the post and every comment attached to it. A well-formed id
// that matches no post is not an error; the comment cleanup still runs.
func (s *PostService) Delete(ctx context.Context, caller, id string) error {
	deleted, err := s.posts.DeletePost(ctx, id, s.guard(caller))
	if err != nil {
		return err
	}

	n, err := s.comments.DeleteCommentsByPostID(ctx, id)
	if err != nil {
		return fmt.Errorf("delete comments of post %s: %w", id, err)
	}

	s.logger.Infow("post deleted", "post_id", id, "existed", deleted, "comments_deleted", n, "caller", caller)
	return nil
}

// GetByID returns a single post
func (s *PostService) GetByID(ctx context.Context, id string) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if errors.Is(err, models.ErrInvalidID) {
		return nil, fmt.Errorf("%w: %v", models.ErrPostNotFound, err)
	}
	return post, err
}

// List returns all posts, or those whose title contains search ignoring case
func (s *PostService) List(ctx context.Context, search string) ([]models.Post, error) {
	return s.posts.GetPosts(ctx, search)
}

// ListByAuthor returns the posts whose author_id equals authorID
func (s *PostService) ListByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	return s.posts.GetPostsByAuthorID(ctx, authorID)
}

// ToggleLike likes the post for caller, or unlikes it if caller already did
func (s *PostService) ToggleLike(ctx context.Context, caller, id string) (*models.Post, error) {
	if caller == "" {
		return nil, fmt.Errorf("%w: missing caller identity", models.ErrValidation)
	}

	post, err := s.posts.ToggleLike(ctx, id, caller)
	if errors.Is(err, models.ErrInvalidID) {
		return nil, fmt.Errorf("%w: %v", models.ErrPostNotFound, err)
	}
	return post, err
}

// guard is the owner the repositories must match, empty when anyone may write
func (s *PostService) guard(caller string) string {
	if s.opts.EnforceOwnership {
		return caller
	}
	return ""
}
