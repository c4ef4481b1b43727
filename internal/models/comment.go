package models

import "gorm.io/gorm"

// Comment represents a comment on a post
type Comment struct {
	gorm.Model
	PostID     string `json:"post_id" gorm:"index"` // ID of the post the comment belongs to (MongoDB ObjectID as hex)
	UserID     string `json:"user_id" gorm:"index"` // Identity of the commenter
	AuthorName string `json:"author_name"`
	Content    string `json:"content"`
}

// CreateCommentRequest defines the request body for creating a new comment
type CreateCommentRequest struct {
	AuthorName string `json:"author_name" validate:"omitempty,max=50"`
	Content    string `json:"content" validate:"required,min=1,max=500"`
}
