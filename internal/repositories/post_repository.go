package repositories

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/anonto42/blog/backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id string) (*models.Post, error)
	GetPosts(ctx context.Context, titleSearch string) ([]models.Post, error)
	GetPostsByAuthorID(ctx context.Context, authorID string) ([]models.Post, error)
	// UpdatePost and DeletePost only touch the post when owner is empty or
	// equals its author_id; otherwise they fail with models.ErrForbidden.
	UpdatePost(ctx context.Context, id, owner string, update models.UpdatePostRequest) (*models.Post, error)
	DeletePost(ctx context.Context, id, owner string) (bool, error)
	ToggleLike(ctx context.Context, id string, identity string) (*models.Post, error)
}

// MongoPostRepository implements PostRepository for MongoDB
type MongoPostRepository struct {
	collection *mongo.Collection
}

// NewMongoPostRepository creates a new MongoPostRepository
func NewMongoPostRepository(db *mongo.Database) *MongoPostRepository {
	return &MongoPostRepository{collection: db.Collection("posts")}
}

// EnsureIndexes creates the unique title/description indexes and the author index
func (r *MongoPostRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "description", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
	})
	return err
}

// CreatePost inserts a new post and fills in its ID and timestamps
func (r *MongoPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
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

	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		post.ID = primitive.NilObjectID
		return translateWriteError(err)
	}
	return nil
}

// GetPostByID retrieves a post by ID from MongoDB
func (r *MongoPostRepository) GetPostByID(ctx context.Context, id string) (*models.Post, error) {
	objID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	var post models.Post
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetPosts returns every post, or only those whose title contains titleSearch
// case-insensitively when it is not empty
func (r *MongoPostRepository) GetPosts(ctx context.Context, titleSearch string) ([]models.Post, error) {
	filter := bson.M{}
	if titleSearch != "" {
		filter["title"] = bson.M{"$regex": regexp.QuoteMeta(titleSearch), "$options": "i"}
	}
	return r.find(ctx, filter)
}

// GetPostsByAuthorID retrieves posts by a specific author from MongoDB
func (r *MongoPostRepository) GetPostsByAuthorID(ctx context.Context, authorID string) ([]models.Post, error) {
	return r.find(ctx, bson.M{"author_id": authorID})
}

// UpdatePost sets the supplied fields and returns the post after the update
func (r *MongoPostRepository) UpdatePost(ctx context.Context, id, owner string, update models.UpdatePostRequest) (*models.Post, error) {
	objID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Photo != nil {
		set["photo"] = *update.Photo
	}
	if update.AuthorName != nil {
		set["author_name"] = *update.AuthorName
	}
	if update.AuthorID != nil {
		set["author_id"] = *update.AuthorID
	}
	if update.Categories != nil {
		categories := *update.Categories
		if categories == nil {
			categories = []string{}
		}
		set["categories"] = categories
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, ownedFilter(objID, owner), bson.M{"$set": set}, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			if owner != "" {
				return nil, r.missingOrForeign(ctx, objID)
			}
			return nil, models.ErrPostNotFound
		}
		return nil, translateWriteError(err)
	}
	return &post, nil
}

// DeletePost deletes a post by ID and reports whether a document was removed
func (r *MongoPostRepository) DeletePost(ctx context.Context, id, owner string) (bool, error) {
	objID, err := parsePostID(id)
	if err != nil {
		return false, err
	}

	res, err := r.collection.DeleteOne(ctx, ownedFilter(objID, owner))
	if err != nil {
		return false, err
	}
	if res.DeletedCount == 0 && owner != "" {
		if err := r.missingOrForeign(ctx, objID); !errors.Is(err, models.ErrPostNotFound) {
			return false, err
		}
	}
	return res.DeletedCount > 0, nil
}

// ToggleLike adds identity to the post's likes or removes it if already present.
// The membership test and the write happen in one pipeline update on the server.
func (r *MongoPostRepository) ToggleLike(ctx context.Context, id string, identity string) (*models.Post, error) {
	objID, err := parsePostID(id)
	if err != nil {
		return nil, err
	}

	// $literal keeps an identity starting with "$" from being read as a field path
	who := bson.D{{Key: "$literal", Value: identity}}
	likes := bson.D{{Key: "$ifNull", Value: bson.A{"$likes", bson.A{}}}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: "likes", Value: bson.D{{Key: "$cond", Value: bson.D{
				{Key: "if", Value: bson.D{{Key: "$in", Value: bson.A{who, likes}}}},
				{Key: "then", Value: bson.D{{Key: "$filter", Value: bson.D{
					{Key: "input", Value: likes},
					{Key: "cond", Value: bson.D{{Key: "$ne", Value: bson.A{"$$this", who}}}},
				}}}},
				{Key: "else", Value: bson.D{{Key: "$concatArrays", Value: bson.A{likes, bson.A{who}}}}},
			}}}},
			{Key: "updated_at", Value: time.Now().UTC()},
		}}},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var post models.Post
	err = r.collection.FindOneAndUpdate(ctx, bson.M{"_id": objID}, pipeline, opts).Decode(&post)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, models.ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *MongoPostRepository) find(ctx context.Context, filter bson.M) ([]models.Post, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err = cursor.All(ctx, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// missingOrForeign tells apart the two reasons an owner-filtered write matched nothing
func (r *MongoPostRepository) missingOrForeign(ctx context.Context, objID primitive.ObjectID) error {
	n, err := r.collection.CountDocuments(ctx, bson.M{"_id": objID}, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: post %s", models.ErrForbidden, objID.Hex())
	}
	return models.ErrPostNotFound
}

func ownedFilter(objID primitive.ObjectID, owner string) bson.M {
	filter := bson.M{"_id": objID}
	if owner != "" {
		filter["author_id"] = owner
	}
	return filter
}

func parsePostID(id string) (primitive.ObjectID, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", models.ErrInvalidID, id)
	}
	return objID, nil
}

func translateWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", models.ErrDuplicatePost, err)
	}
	return err
}
