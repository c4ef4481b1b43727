package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Post represents a blog post stored in MongoDB
type Post struct {
	ID          primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Title       string             `json:"title" bson:"title"`
	Description string             `json:"description" bson:"description"`
	Photo       string             `json:"photo,omitempty" bson:"photo,omitempty"`
	AuthorName  string             `json:"author_name" bson:"author_name"`
	AuthorID    string             `json:"author_id" bson:"author_id"` // Identity of the creator, not enforced as a reference
	Categories  []string           `json:"categories" bson:"categories"`
	Likes       []string           `json:"likes" bson:"likes"` // Identities of users who liked the post, no duplicates
	CreatedAt   time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" bson:"updated_at"`
}

// HasLike reports whether identity is present in the likes set
func (p *Post) HasLike(identity string) bool {
	for _, id := range p.Likes {
		if id == identity {
			return true
		}
	}
	return false
}

// CreatePostRequest defines the request body for creating a new post
type CreatePostRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Photo       string   `json:"photo,omitempty"`
	AuthorName  string   `json:"author_name" validate:"required"`
	AuthorID    string   `json:"author_id" validate:"required"`
	Categories  []string `json:"categories,omitempty" validate:"omitempty,dive,required"`
}

// UpdatePostRequest defines the request body for updating an existing post.
// Nil fields are left unchanged.
type UpdatePostRequest struct {
	Title       *string   `json:"title,omitempty" validate:"omitnil,min=1"`
	Description *string   `json:"description,omitempty" validate:"omitnil,min=1"`
	Photo       *string   `json:"photo,omitempty"`
	AuthorName  *string   `json:"author_name,omitempty" validate:"omitnil,min=1"`
	AuthorID    *string   `json:"author_id,omitempty" validate:"omitnil,min=1"`
	Categories  *[]string `json:"categories,omitempty"`
}

// IsEmpty reports whether the request changes nothing
func (r UpdatePostRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.Photo == nil &&
		r.AuthorName == nil && r.AuthorID == nil && r.Categories == nil
}
