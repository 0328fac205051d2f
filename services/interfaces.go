package services

import (
	"context"

	"github.com/princinho/coursemarket/models"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	AddRefreshToken(ctx context.Context, userID bson.ObjectID, token models.RefreshToken, maxActive int) error
	ConsumeRefreshToken(ctx context.Context, userID bson.ObjectID, fingerprint string) (bool, error)
	RevokeRefreshToken(ctx context.Context, userID bson.ObjectID, fingerprint string) error
	RevokeAllRefreshTokens(ctx context.Context, userID bson.ObjectID) error
	UpdatePassword(ctx context.Context, userID bson.ObjectID, passwordHash string) error
	AddPurchasedCourse(ctx context.Context, userID, courseID bson.ObjectID) error
	List(ctx context.Context, skip, limit int64) ([]models.UserDetail, int64, error)
	Detail(ctx context.Context, id bson.ObjectID) (*models.UserDetail, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	SeedAdmin(ctx context.Context, name, email, passwordHash string) (bool, error)
}

type CourseStore interface {
	Create(ctx context.Context, course *models.Course) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Course, error)
	List(ctx context.Context, f models.CourseFilter) ([]models.Course, int64, error)
	Update(ctx context.Context, id bson.ObjectID, set bson.M) (*models.Course, error)
	Delete(ctx context.Context, id bson.ObjectID) error
	IncrementEnrolled(ctx context.Context, id bson.ObjectID) error
}

type PurchaseStore interface {
	Create(ctx context.Context, p *models.Purchase) error
	Exists(ctx context.Context, userID, courseID bson.ObjectID) (bool, error)
	ListByUser(ctx context.Context, userID bson.ObjectID) ([]models.PurchaseView, error)
	List(ctx context.Context, skip, limit int64) ([]models.PurchaseView, int64, error)
	View(ctx context.Context, id bson.ObjectID) (*models.PurchaseView, error)
}

// Transactor runs fn atomically; any error from fn rolls every write back.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// CourseCache fronts catalog reads. Invalidate must be called after any write that
// changes what a read would return.
type CourseCache interface {
	GetList(ctx context.Context, key string, dst any) (bool, error)
	SetList(ctx context.Context, key string, value any) error
	GetCourse(ctx context.Context, id string, dst *models.Course) (bool, error)
	SetCourse(ctx context.Context, course *models.Course) error
	Invalidate(ctx context.Context) error
}

type nopCache struct{}

func (nopCache) GetList(context.Context, string, any) (bool, error)              { return false, nil }
func (nopCache) SetList(context.Context, string, any) error                      { return nil }
func (nopCache) GetCourse(context.Context, string, *models.Course) (bool, error) { return false, nil }
func (nopCache) SetCourse(context.Context, *models.Course) error                 { return nil }
func (nopCache) Invalidate(context.Context) error                                { return nil }
