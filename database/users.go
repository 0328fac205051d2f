package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/princinho/coursemarket/models"
	"github.com/princinho/coursemarket/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// publicUserProjection strips credentials and sessions from anything handed to callers.
var publicUserProjection = bson.M{"password": 0, "refreshTokens": 0}

type UserRepository struct {
	col *mongo.Collection
	now func() time.Time
}

func NewUserRepository(store *Store) *UserRepository {
	return &UserRepository{col: store.Collection(UsersCollection), now: time.Now}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	now := r.now().UTC()
	if user.ID.IsZero() {
		user.ID = bson.NewObjectID()
	}
	if user.PurchasedCourses == nil {
		user.PurchasedCourses = []bson.ObjectID{}
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, user); err != nil {
		if utils.IsDuplicateKey(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("count users by email: %w", err)
	}
	return n > 0, nil
}

// FindByEmail returns the full document, credential included, for login.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, notFound(err, "find user by email")
	}
	return &user, nil
}

// FindByID returns the sanitized user.
func (r *UserRepository) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	var user models.User
	opts := options.FindOne().SetProjection(publicUserProjection)
	if err := r.col.FindOne(ctx, bson.M{"_id": id}, opts).Decode(&user); err != nil {
		return nil, notFound(err, "find user by id")
	}
	return &user, nil
}

// AddRefreshToken records a session and keeps at most maxActive of the newest ones.
func (r *UserRepository) AddRefreshToken(ctx context.Context, userID bson.ObjectID, token models.RefreshToken, maxActive int) error {
	res, err := r.col.UpdateByID(ctx, userID, bson.M{
		"$push": bson.M{
			"refreshTokens": bson.M{
				"$each":  bson.A{token},
				"$slice": -maxActive,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("push refresh token: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ConsumeRefreshToken removes an unexpired fingerprint and reports whether it was present.
// The conditional pull is the serialization point for concurrent refreshes of one token.
func (r *UserRepository) ConsumeRefreshToken(ctx context.Context, userID bson.ObjectID, fingerprint string) (bool, error) {
	filter := bson.M{
		"_id": userID,
		"refreshTokens": bson.M{"$elemMatch": bson.M{
			"fingerprint": fingerprint,
			"expiresAt":   bson.M{"$gt": r.now().UTC()},
		}},
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{
		"$pull": bson.M{"refreshTokens": bson.M{"fingerprint": fingerprint}},
	})
	if err != nil {
		return false, fmt.Errorf("consume refresh token: %w", err)
	}
	return res.ModifiedCount == 1, nil
}

func (r *UserRepository) RevokeRefreshToken(ctx context.Context, userID bson.ObjectID, fingerprint string) error {
	_, err := r.col.UpdateByID(ctx, userID, bson.M{
		"$pull": bson.M{"refreshTokens": bson.M{"fingerprint": fingerprint}},
	})
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	return nil
}

func (r *UserRepository) RevokeAllRefreshTokens(ctx context.Context, userID bson.ObjectID) error {
	_, err := r.col.UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{"refreshTokens": bson.A{}},
	})
	if err != nil {
		return fmt.Errorf("revoke all refresh tokens: %w", err)
	}
	return nil
}

// UpdatePassword swaps the credential hash and revokes every session.
func (r *UserRepository) UpdatePassword(ctx context.Context, userID bson.ObjectID, passwordHash string) error {
	res, err := r.col.UpdateByID(ctx, userID, bson.M{
		"$set": bson.M{
			"password":      passwordHash,
			"refreshTokens": bson.A{},
			"updatedAt":     r.now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// PullExpiredRefreshTokens drops expired sessions from every user and returns how many
// users were touched.
func (r *UserRepository) PullExpiredRefreshTokens(ctx context.Context, now time.Time) (int64, error) {
	expired := bson.M{"expiresAt": bson.M{"$lte": now}}
	res, err := r.col.UpdateMany(ctx,
		bson.M{"refreshTokens": bson.M{"$elemMatch": expired}},
		bson.M{"$pull": bson.M{"refreshTokens": expired}},
	)
	if err != nil {
		return 0, fmt.Errorf("pull expired refresh tokens: %w", err)
	}
	return res.ModifiedCount, nil
}

// AddPurchasedCourse is a set-union; adding an owned course is a no-op.
func (r *UserRepository) AddPurchasedCourse(ctx context.Context, userID, courseID bson.ObjectID) error {
	res, err := r.col.UpdateByID(ctx, userID, bson.M{
		"$addToSet": bson.M{"purchasedCourses": courseID},
		"$set":      bson.M{"updatedAt": r.now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("add purchased course: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, skip, limit int64) ([]models.UserDetail, int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$skip", Value: skip}},
		{{Key: "$limit", Value: limit}},
		ownedCoursesLookup(bson.M{"title": 1, "price": 1}),
		{{Key: "$project", Value: publicUserProjection}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, fmt.Errorf("aggregate users: %w", err)
	}
	users := make([]models.UserDetail, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, 0, fmt.Errorf("decode users: %w", err)
	}

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}
	return users, total, nil
}

func (r *UserRepository) Detail(ctx context.Context, id bson.ObjectID) (*models.UserDetail, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": id}}},
		ownedCoursesLookup(bson.M{"title": 1, "price": 1, "instructor": 1}),
		{{Key: "$project", Value: publicUserProjection}},
	}

	cursor, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate user: %w", err)
	}
	var out []models.UserDetail
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return &out[0], nil
}

func (r *UserRepository) Delete(ctx context.Context, id bson.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedAdmin inserts the admin account only if the email is not registered yet.
func (r *UserRepository) SeedAdmin(ctx context.Context, name, email, passwordHash string) (bool, error) {
	now := r.now().UTC()
	update := bson.M{
		"$setOnInsert": bson.M{
			"name":             name,
			"email":            email,
			"password":         passwordHash,
			"role":             models.RoleAdmin,
			"purchasedCourses": bson.A{},
			"createdAt":        now,
			"updatedAt":        now,
		},
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"email": email}, update, options.UpdateOne().SetUpsert(true))
	if err != nil {
		return false, fmt.Errorf("seed admin upsert failed: %w", err)
	}
	return res.UpsertedCount == 1, nil
}

func ownedCoursesLookup(project bson.M) bson.D {
	return bson.D{{Key: "$lookup", Value: bson.M{
		"from": CoursesCollection,
		"let":  bson.M{"ids": bson.M{"$ifNull": bson.A{"$purchasedCourses", bson.A{}}}},
		"pipeline": bson.A{
			bson.M{"$match": bson.M{"$expr": bson.M{"$in": bson.A{"$_id", "$$ids"}}}},
			bson.M{"$project": project},
		},
		"as": "purchasedCourses",
	}}}
}

func notFound(err error, op string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}
