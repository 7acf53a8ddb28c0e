package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/newschakra/newsdesk/internal/news"
)

const storiesCollection = "webstories"

// StoryStore implements news.StoryStore on a MongoDB collection with a
// unique index on slug.
type StoryStore struct {
	coll  *mongo.Collection
	clock news.Clock
}

// NewStoryStore binds the store to its collection and ensures the slug
// index exists.
func NewStoryStore(ctx context.Context, db *mongo.Database, clock news.Clock) (*StoryStore, error) {
	if clock == nil {
		clock = news.SystemClock{}
	}
	coll := db.Collection(storiesCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure slug index: %w", err)
	}
	return &StoryStore{coll: coll, clock: clock}, nil
}

// Insert persists a new web story.
func (s *StoryStore) Insert(ctx context.Context, story news.WebStory) (news.WebStory, error) {
	now := s.clock.Now()
	if story.ID.IsZero() {
		story.ID = primitive.NewObjectID()
	}
	if story.PublishedAt.IsZero() {
		story.PublishedAt = now
	}
	story.CreatedAt = now
	story.UpdatedAt = now

	if _, err := s.coll.InsertOne(ctx, story); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return news.WebStory{}, news.ErrDuplicateSlug
		}
		return news.WebStory{}, fmt.Errorf("insert story: %w", err)
	}
	return story, nil
}

// Update replaces the mutable fields of a story by id.
func (s *StoryStore) Update(ctx context.Context, id string, story news.WebStory) (news.WebStory, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return news.WebStory{}, news.ErrNotFound
	}

	set := bson.M{
		"title":       story.Title,
		"slug":        story.Slug,
		"cover_image": story.CoverImage,
		"pages":       story.Pages,
		"updated_at":  s.clock.Now(),
	}

	var updated news.WebStory
	err = s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return news.WebStory{}, news.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return news.WebStory{}, news.ErrDuplicateSlug
		}
		return news.WebStory{}, fmt.Errorf("update story: %w", err)
	}
	return updated, nil
}

// Delete removes a story by id.
func (s *StoryStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return news.ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete story: %w", err)
	}
	if res.DeletedCount == 0 {
		return news.ErrNotFound
	}
	return nil
}

// BySlug fetches one story by its slug.
func (s *StoryStore) BySlug(ctx context.Context, slug string) (news.WebStory, error) {
	var story news.WebStory
	if err := s.coll.FindOne(ctx, bson.M{"slug": slug}).Decode(&story); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return news.WebStory{}, news.ErrNotFound
		}
		return news.WebStory{}, fmt.Errorf("find story: %w", err)
	}
	return story, nil
}

// Recent returns the newest stories with only the fields the homepage rail
// renders.
func (s *StoryStore) Recent(ctx context.Context, limit int) ([]news.WebStory, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"title": 1, "slug": 1, "cover_image": 1, "created_at": 1})

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find recent stories: %w", err)
	}
	defer cursor.Close(ctx)

	stories := []news.WebStory{}
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, fmt.Errorf("decode stories: %w", err)
	}
	return stories, nil
}

// All returns every story, newest first, for the admin manage page.
func (s *StoryStore) All(ctx context.Context) ([]news.WebStory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find stories: %w", err)
	}
	defer cursor.Close(ctx)

	stories := []news.WebStory{}
	if err := cursor.All(ctx, &stories); err != nil {
		return nil, fmt.Errorf("decode stories: %w", err)
	}
	return stories, nil
}
