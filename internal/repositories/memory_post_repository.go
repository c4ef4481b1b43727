package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/anonto42/blog/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryPostRepository implements PostRepository in process memory.
// It enforces the same title/description uniqueness as the Mongo indexes.
type MemoryPostRepository struct {
	mu    sync.RWMutex
	posts map[primitive.ObjectID]*models.Post
	order []primitive.ObjectID
}

// NewMemoryPostRepository creates an empty MemoryPostRepository
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{posts: make(map[primitive.ObjectID]*models.Post)}
}

// CreatePost stores a new post and fills in its ID and timestamps
func (r *MemoryPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkUnique(primitive.NilObjectID, post.Title, post.Description); err != nil {
		return err
	}

	now := time.Now().UTC()
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []string{}
	}
	if post.Categories == nil {
		post.Categories = []string{}
	}

	r.posts[post.ID] = clonePost(post)
	r.order = append(r.order, post.ID)
	return nil
}

// GetPostByID retrieves a copy of the post with the given ID
func (r *MemoryPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	post, ok := r.posts[objID]
	if !ok {
		return nil, models.ErrPostNotFound
	}
	return clonePost(post), nil
}

// GetPosts returns posts in insertion order, filtered by a case-insensitive
// title substring when titleSearch is not empty
func (r *MemoryPostRepository) GetPosts(ctx context.Context, titleSearch string) ([]models.Post, error) {
	needle := strings.ToLower(titleSearch)
	return r.filter(func(p *models.Post) bool {
		return needle == "" || strings.Contains(strings.ToLower(p.Title), needle)
	}), nil
}

// GetPostsByAuthorID retrieves the posts of one author
func (r *MemoryPostRepository) GetPostsByAuthorID(ctx context.Context, authorID string) ([]models.Post, error) {
	return r.filter(func(p *models.Post) bool {
		return p.AuthorID == authorID
	}), nil
}

// UpdatePost sets the supplied fields and returns the post after the update
func (r *MemoryPostRepository) UpdatePost(ctx context.Context, id, owner string, update models.UpdatePostRequest) (*models.Post, error) {
	objID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.posts[objID]
	if !ok {
		return nil, models.ErrPostNotFound
	}
	if owner != "" && existing.AuthorID != owner {
		return nil, fmt.Errorf("%w: post %s", models.ErrForbidden, id)
	}

	post := clonePost(existing)
	if update.Title != nil {
		post.Title = *update.Title
	}
	if update.Description != nil {
		post.Description = *update.Description
	}
	if update.Photo != nil {
		post.Photo = *update.Photo
	}
	if update.AuthorName != nil {
		post.AuthorName = *update.AuthorName
	}
	if update.AuthorID != nil {
		post.AuthorID = *update.AuthorID
	}
	if update.Categories != nil {
		post.Categories = append([]string{}, (*update.Categories)...)
	}

	if err := r.checkUnique(objID, post.Title, post.Description); err != nil {
		return nil, err
	}

	post.UpdatedAt = time.Now().UTC()
	r.posts[objID] = post
	return clonePost(post), nil
}

// DeletePost deletes a post by ID and reports whether it existed
func (r *MemoryPostRepository) DeletePost(ctx context.Context, id, owner string) (bool, error) {
	objID, err := parsePostID(id)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[objID]
	if !ok {
		return false, nil
	}
	if owner != "" && post.AuthorID != owner {
		return false, fmt.Errorf("%w: post %s", models.ErrForbidden, id)
	}
	delete(r.posts, objID)
	for i, oid := range r.order {
		if oid == objID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// ToggleLike adds identity to the post's likes or removes it if present
func (r *MemoryPostRepository) ToggleLike(ctx context.Context, id string, identity string) (*models.Post, error) {
	objID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.posts[objID]
	if !ok {
		return nil, models.ErrPostNotFound
	}

	if post.HasLike(identity) {
		likes := make([]string, 0, len(post.Likes))
		for _, l := range post.Likes {
			if l != identity {
				likes = append(likes, l)
			}
		}
		post.Likes = likes
	} else {
		post.Likes = append(post.Likes, identity)
	}
	post.UpdatedAt = time.Now().UTC()
	return clonePost(post), nil
}

func (r *MemoryPostRepository) filter(match func(*models.Post) bool) []models.Post {
	r.mu.RLock()
	defer r.mu.RUnlock()

	posts := []models.Post{}
	for _, id := range r.order {
		if p := r.posts[id]; match(p) {
			posts = append(posts, *clonePost(p))
		}
	}
	return posts
}

// checkUnique must be called with the lock held
func (r *MemoryPostRepository) checkUnique(self primitive.ObjectID, title, description string) error {
	for id, p := range r.posts {
		if id == self {
			continue
		}
		if p.Title == title {
			return fmt.Errorf("%w: title %q", models.ErrDuplicatePost, title)
		}
		if p.Description == description {
			return fmt.Errorf("%w: description %q", models.ErrDuplicatePost, description)
		}
	}
	return nil
}

func clonePost(p *models.Post) *models.Post {
	c := *p
	c.Likes = append([]string{}, p.Likes...)
	c.Categories = append([]string{}, p.Categories...)
	return &c
}
