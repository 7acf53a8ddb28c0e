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

const articlesCollection = "articles"

// ArticleStore implements news.ArticleStore on a MongoDB collection with a
// unique index on slug.
type ArticleStore struct {
	coll  *mongo.Collection
	clock news.Clock
}

// NewArticleStore binds the store to its collection and ensures the slug
// index exists. The index is the single backstop against duplicate slugs
// inserted by racing writers.
func NewArticleStore(ctx context.Context, db *mongo.Database, clock news.Clock) (*ArticleStore, error) {
	if clock == nil {
		clock = news.SystemClock{}
	}
	coll := db.Collection(articlesCollection)
	_, err := coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("ensure slug index: %w", err)
	}
	return &ArticleStore{coll: coll, clock: clock}, nil
}

// Insert persists a new article. A zero CreatedAt is stamped with the
// current time; ingested articles arrive with their publish time already
// set and keep it.
func (s *ArticleStore) Insert(ctx context.Context, a news.Article) (news.Article, error) {
	now := s.clock.Now()
	if a.ID.IsZero() {
		a.ID = primitive.NewObjectID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if a.Author == "" {
		a.Author = news.DefaultAuthor
	}

	if _, err := s.coll.InsertOne(ctx, a); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return news.Article{}, news.ErrDuplicateSlug
		}
		return news.Article{}, fmt.Errorf("insert article: %w", err)
	}
	return a, nil
}

// Update applies a partial field set by id and returns the updated article.
func (s *ArticleStore) Update(ctx context.Context, id string, upd news.ArticleUpdate) (news.Article, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return news.Article{}, news.ErrNotFound
	}

	set := bson.M{"updated_at": s.clock.Now()}
	setIf := func(field string, v *string) {
		if v != nil {
			set[field] = *v
		}
	}
	setIf("title_en", upd.TitleEN)
	setIf("title_hi", upd.TitleHI)
	setIf("summary_en", upd.SummaryEN)
	setIf("summary_hi", upd.SummaryHI)
	setIf("content_en", upd.ContentEN)
	setIf("content_hi", upd.ContentHI)
	setIf("url_headline", upd.URLHeadline)
	setIf("short_headline", upd.ShortHeadline)
	setIf("long_headline", upd.LongHeadline)
	setIf("kicker", upd.Kicker)
	setIf("category", upd.Category)
	setIf("subcategory", upd.Subcategory)
	setIf("district", upd.District)
	setIf("slug", upd.Slug)
	setIf("featured_image", upd.FeaturedImage)
	setIf("thumbnail_caption", upd.ThumbnailCaption)
	setIf("author", upd.Author)
	setIf("source_url", upd.SourceURL)
	if upd.Keywords != nil {
		set["keywords"] = *upd.Keywords
	}
	if upd.Gallery != nil {
		set["gallery_images"] = *upd.Gallery
	}

	var updated news.Article
	err = s.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return news.Article{}, news.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return news.Article{}, news.ErrDuplicateSlug
		}
		return news.Article{}, fmt.Errorf("update article: %w", err)
	}
	return updated, nil
}

// Delete removes an article by id. Delete is whole-document.
func (s *ArticleStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return news.ErrNotFound
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if res.DeletedCount == 0 {
		return news.ErrNotFound
	}
	return nil
}

// ByID fetches one article by its id.
func (s *ArticleStore) ByID(ctx context.Context, id string) (news.Article, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return news.Article{}, news.ErrNotFound
	}
	return s.findOne(ctx, bson.M{"_id": oid})
}

// BySlug fetches one article by its slug.
func (s *ArticleStore) BySlug(ctx context.Context, slug string) (news.Article, error) {
	return s.findOne(ctx, bson.M{"slug": slug})
}

func (s *ArticleStore) findOne(ctx context.Context, filter bson.M) (news.Article, error) {
	var a news.Article
	if err := s.coll.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return news.Article{}, news.ErrNotFound
		}
		return news.Article{}, fmt.Errorf("find article: %w", err)
	}
	return a, nil
}

// SlugExists reports whether any article other than excludeID holds the
// slug.
func (s *ArticleStore) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	filter := bson.M{"slug": slug}
	if excludeID != "" {
		oid, err := primitive.ObjectIDFromHex(excludeID)
		if err == nil {
			filter["_id"] = bson.M{"$ne": oid}
		}
	}
	n, err := s.coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count slug %q: %w", slug, err)
	}
	return n > 0, nil
}

// Find renders the store-agnostic filter into a Mongo query, sorted newest
// first.
func (s *ArticleStore) Find(ctx context.Context, f news.Filter) ([]news.Article, error) {
	var clauses []bson.M

	switch len(f.CategoryAnyOf) {
	case 0:
	case 1:
		clauses = append(clauses, bson.M{"category": anchored(f.CategoryAnyOf[0])})
	default:
		or := make([]bson.M, 0, len(f.CategoryAnyOf))
		for _, v := range f.CategoryAnyOf {
			or = append(or, bson.M{"category": anchored(v)})
		}
		clauses = append(clauses, bson.M{"$or": or})
	}
	if f.Subcategory != "" {
		clauses = append(clauses, bson.M{"subcategory": anchored(f.Subcategory)})
	}
	if f.District != "" {
		clauses = append(clauses, bson.M{"district": anchored(f.District)})
	}
	if f.ExcludeSlug != "" {
		clauses = append(clauses, bson.M{"slug": bson.M{"$ne": f.ExcludeSlug}})
	}
	switch f.Lang {
	case news.LangHI:
		clauses = append(clauses, bson.M{"title_hi": bson.M{"$nin": bson.A{nil, ""}}})
	case news.LangEN:
		clauses = append(clauses, bson.M{"title_en": bson.M{"$nin": bson.A{nil, ""}}})
	}
	if f.Search != "" {
		needle := substring(f.Search)
		fields := []string{
			"title_en", "title_hi",
			"summary_en", "summary_hi",
			"content_en", "content_hi",
			"long_headline", "short_headline", "kicker", "keywords",
		}
		or := make([]bson.M, 0, len(fields))
		for _, field := range fields {
			or = append(or, bson.M{field: bson.M{"$regex": needle}})
		}
		clauses = append(clauses, bson.M{"$or": or})
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if f.Limit > 0 {
		opts.SetLimit(int64(f.Limit))
	}

	cursor, err := s.coll.Find(ctx, and(clauses), opts)
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	defer cursor.Close(ctx)

	articles := []news.Article{}
	if err := cursor.All(ctx, &articles); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	return articles, nil
}

// Count returns the total number of stored articles.
func (s *ArticleStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}
