package database

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/princinho/coursemarket/models"
	"github.com/princinho/coursemarket/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// SortableCourseFields lists the fields a catalog listing may be ordered by.
var SortableCourseFields = map[string]bool{
	"createdAt":        true,
	"updatedAt":        true,
	"price":            true,
	"title":            true,
	"level":            true,
	"enrolledStudents": true,
}

type CourseRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewCourseRepository(store *Store) *CourseRepository {
	return &CourseRepository{col: store.Collection(CoursesCollection), now: time.Now}
}

func (r *CourseRepository) Create(ctx context.Context, course *models.Course) error {
	now := r.now().UTC()
	if course.ID.IsZero() {
		course.ID = bson.NewObjectID()
	}
	course.CreatedAt = now
	course.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, course); err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

func (r *CourseRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.Course, error) {
	var course models.Course
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&course); err != nil {
		return nil, notFound(err, "find course")
	}
	return &course, nil
}

// List returns active courses matching f. Paging values are expected to be normalized.
func (r *CourseRepository) List(ctx context.Context, f models.CourseFilter) ([]models.Course, int64, error) {
	filter := CourseQuery(f)
	opts := options.Find().
		SetSort(CourseSort(f.SortBy, f.SortOrder)).
		SetSkip(utils.PageParams{Page: f.Page, Limit: f.Limit}.Skip()).
		SetLimit(int64(f.Limit))

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("find courses: %w", err)
	}
	courses := make([]models.Course, 0)
	if err := cursor.All(ctx, &courses); err != nil {
		return nil, 0, fmt.Errorf("decode courses: %w", err)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count courses: %w", err)
	}
	return courses, total, nil
}

// Update applies set and returns the updated document.
func (r *CourseRepository) Update(ctx context.Context, id bson.ObjectID, set bson.M) (*models.Course, error) {
	set["updatedAt"] = r.now().UTC()
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var course models.Course
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&course)
	if err != nil {
		return nil, notFound(err, "update course")
	}
	return &course, nil
}

func (r *CourseRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CourseRepository) IncrementEnrolled(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$inc": bson.M{"enrolledStudents": 1}})
	if err != nil {
		return fmt.Errorf("increment enrolled students: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CourseQuery builds the mongo filter for a public catalog listing.
func CourseQuery(f models.CourseFilter) bson.M {
	filter := bson.M{"isActive": true}

	if f.Search != "" {
		filter["$text"] = bson.M{"$search": f.Search}
	}
	if f.Category != "" {
		filter["category"] = bson.Regex{Pattern: regexp.QuoteMeta(f.Category), Options: "i"}
	}
	if f.Level != "" {
		filter["level"] = f.Level
	}
	if f.MinPrice != nil || f.MaxPrice != nil {
		price := bson.M{}
		if f.MinPrice != nil {
			price["$gte"] = *f.MinPrice
		}
		if f.MaxPrice != nil {
			price["$lte"] = *f.MaxPrice
		}
		filter["price"] = price
	}
	return filter
}

// CourseSort defaults to newest first. Unknown fields fall back to createdAt.
func CourseSort(field, order string) bson.D {
	if !SortableCourseFields[field] {
		field = "createdAt"
	}
	dir := -1
	if order == "asc" {
		dir = 1
	}
	return bson.D{{Key: field, Value: dir}, {Key: "_id", Value: dir}}
}
