package database

import (
	"context"
	"fmt"
	"time"

	"github.com/princinho/coursemarket/models"
	"github.com/princinho/coursemarket/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

var (
	userSummaryFields       = bson.M{"name": 1, "email": 1}
	courseListFields        = bson.M{"title": 1, "instructor": 1, "price": 1}
	courseDescriptiveFields = bson.M{"title": 1, "description": 1, "instructor": 1, "price": 1}
)

type PurchaseRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewPurchaseRepository(store *Store) *PurchaseRepository {
	return &PurchaseRepository{col: store.Collection(PurchasesCollection), now: time.Now}
}

func (r *PurchaseRepository) Create(ctx context.Context, p *models.Purchase) error {
	now := r.now().UTC()
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	p.PurchaseDate = now
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, p); err != nil {
		if utils.IsDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

func (r *PurchaseRepository) Exists(ctx context.Context, userID, courseID bson.ObjectID) (bool, error) {
	n, err := r.col.CountDocuments(ctx,
		bson.M{"userId": userID, "courseId": courseID},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, fmt.Errorf("count purchases: %w", err)
	}
	return n > 0, nil
}

func (r *PurchaseRepository) CountByPair(ctx context.Context, userID, courseID bson.ObjectID) (int64, error) {
	return r.col.CountDocuments(ctx, bson.M{"userId": userID, "courseId": courseID})
}

// ListByUser returns a user's purchases, newest first, with course summaries.
func (r *PurchaseRepository) ListByUser(ctx context.Context, userID bson.ObjectID) ([]models.PurchaseView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"userId": userID}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}
	pipeline = append(pipeline, joinStages(CoursesCollection, "courseId", "course", courseDescriptiveFields)...)
	return r.aggregate(ctx, pipeline)
}

func (r *PurchaseRepository) List(ctx context.Context, skip, limit int64) ([]models.PurchaseView, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
	}
	pipeline = append(pipeline, joinStages(UsersCollection, "userId", "user", userSummaryFields)...)
	pipeline = append(pipeline, joinStages(CoursesCollection, "courseId", "course", courseListFields)...)

	views, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count purchases: %w", err)
	}
	return views, total, nil
}

// View returns a single purchase joined with both sides.
func (r *PurchaseRepository) View(ctx context.Context, id bson.ObjectID) (*models.PurchaseView, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
	}
	pipeline = append(pipeline, joinStages(UsersCollection, "userId", "user", userSummaryFields)...)
	pipeline = append(pipeline, joinStages(CoursesCollection, "courseId", "course", courseDescriptiveFields)...)

	views, err := r.aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, ErrNotFound
	}
	return &views[0], nil
}

func (r *PurchaseRepository) aggregate(ctx context.Context, pipeline mongo.Pipeline) ([]models.PurchaseView, error) {
	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate purchases: %w", err)
	}
	views := make([]models.PurchaseView, 0)
	if err := cursor.All(ctx, &views); err != nil {
		return nil, fmt.Errorf("decode purchases: %w", err)
	}
	return views, nil
}

// joinStages embeds the projected document referenced by localField under as.
// A dangling reference leaves the field absent rather than dropping the purchase.
func joinStages(from, localField, as string, project bson.M) []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         from,
			"localField":   localField,
			"foreignField": "_id",
			"pipeline":     bson.A{bson.M{"$project": project}},
			"as":           as,
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$" + as,
			"preserveNullAndEmptyArrays": true,
		}}},
	}
}
