package repositories

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/blog/backend/internal/models"
)

// MemoryCommentRepository implements CommentRepository in process memory
type MemoryCommentRepository struct {
	mu       sync.Mutex
	lastID   uint
	comments []models.Comment
}

// NewMemoryCommentRepository creates an empty MemoryCommentRepository
func NewMemoryCommentRepository() *MemoryCommentRepository {
	return &MemoryCommentRepository{}
}

// CreateComment stores a comment and assigns its ID
func (r *MemoryCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.lastID++
	now := time.Now().UTC()
	comment.ID = r.lastID
	comment.CreatedAt = now
	comment.UpdatedAt = now
	r.comments = append(r.comments, *comment)
	return nil
}

// GetCommentsByPostID retrieves the comments of a post in creation order
func (r *MemoryCommentRepository) GetCommentsByPostID(ctx context.Context, postID string) ([]models.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	res := []models.Comment{}
	for _, c := range r.comments {
		if c.PostID == postID {
			res = append(res, c)
		}
	}
	return res, nil
}

// DeleteCommentsByPostID removes every comment attached to postID
func (r *MemoryCommentRepository) DeleteCommentsByPostID(ctx context.Context, postID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.comments[:0]
	var deleted int64
	for _, c := range r.comments {
		if c.PostID == postID {
			deleted++
			continue
		}
		kept = append(kept, c)
	}
	r.comments = kept
	return deleted, nil
}
