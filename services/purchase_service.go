package services

import (
	"context"
	"errors"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/princinho/coursemarket/database"
	"github.com/princinho/coursemarket/dto"
	"github.com/princinho/coursemarket/models"
	"github.com/princinho/coursemarket/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

const (
	msgCourseUnavailable = "Course not found or inactive"
	msgAlreadyPurchased  = "You have already purchased this course"
	msgPurchaseNotFound  = "Purchase not found"
)

type PurchasePage struct {
	Purchases  []models.PurchaseView `json:"purchases"`
	Pagination utils.Pagination      `json:"pagination"`
}

type PurchaseService struct {
	tx        Transactor
	purchases PurchaseStore
	courses   CourseStore
	users     UserStore
	cache     CourseCache
	results   *prometheus.CounterVec
	log       *zap.Logger
}

type PurchaseServiceDeps struct {
	Tx        Transactor
	Purchases PurchaseStore
	Courses   CourseStore
	Users     UserStore
	Cache     CourseCache
	Registry  prometheus.Registerer
	Log       *zap.Logger
}

func NewPurchaseService(d PurchaseServiceDeps) *PurchaseService {
	results := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "purchases_total",
		Help: "Purchase attempts by result.",
	}, []string{"result"})
	if d.Registry != nil {
		d.Registry.MustRegister(results)
	}
	if d.Cache == nil {
		d.Cache = nopCache{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	return &PurchaseService{
		tx:        d.Tx,
		purchases: d.Purchases,
		courses:   d.Courses,
		users:     d.Users,
		cache:     d.Cache,
		results:   results,
		log:       d.Log,
	}
}

// Purchase records that actor bought a course. The purchase insert, the owned-course
// update and the enrolment counter commit together or not at all.
func (s *PurchaseService) Purchase(ctx context.Context, actor *models.User, in dto.PurchaseDTO) (*models.PurchaseView, error) {
	if actor == nil {
		return nil, utils.Unauthenticated("Access token required")
	}
	courseID, err := bson.ObjectIDFromHex(in.CourseID)
	if err != nil {
		s.observe(utils.NotFound(msgCourseUnavailable))
		return nil, utils.NotFound(msgCourseUnavailable)
	}

	method := strings.TrimSpace(in.PaymentMethod)
	if method == "" {
		method = models.DefaultPaymentMethod
	}

	var created *models.Purchase
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		course, err := s.courses.FindByID(ctx, courseID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return utils.NotFound(msgCourseUnavailable)
			}
			return err
		}
		if !course.IsActive {
			return utils.NotFound(msgCourseUnavailable)
		}

		owned, err := s.purchases.Exists(ctx, actor.ID, courseID)
		if err != nil {
			return err
		}
		if owned {
			return utils.Conflict(msgAlreadyPurchased)
		}

		p := &models.Purchase{
			UserID:        actor.ID,
			CourseID:      courseID,
			Amount:        course.Price,
			PaymentStatus: models.PaymentCompleted,
			PaymentMethod: method,
		}
		if err := s.purchases.Create(ctx, p); err != nil {
			if errors.Is(err, database.ErrDuplicateKey) {
				return utils.Conflict(msgAlreadyPurchased)
			}
			return err
		}

		if err := s.users.AddPurchasedCourse(ctx, actor.ID, courseID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return utils.NotFound("User not found")
			}
			return err
		}
		if err := s.courses.IncrementEnrolled(ctx, courseID); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return utils.NotFound(msgCourseUnavailable)
			}
			return err
		}

		created = p
		return nil
	})
	s.observe(err)
	if err != nil {
		if utils.KindOf(err) == utils.KindInternal {
			return nil, utils.Internal("purchase failed", err)
		}
		return nil, err
	}

	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("course cache invalidation failed", zap.Error(err))
	}
	s.log.Info("course purchased",
		zap.String("purchase_id", created.ID.Hex()),
		zap.String("user_id", actor.ID.Hex()),
		zap.String("course_id", courseID.Hex()),
	)

	// The purchase is committed; a failed read-back must not turn it into an error.
	view, err := s.purchases.View(ctx, created.ID)
	if err != nil {
		s.log.Warn("purchase read-back failed",
			zap.String("purchase_id", created.ID.Hex()),
			zap.Error(err),
		)
		return created.View(), nil
	}
	return view, nil
}

func (s *PurchaseService) ListForUser(ctx context.Context, actor *models.User) ([]models.PurchaseView, error) {
	if actor == nil {
		return nil, utils.Unauthenticated("Access token required")
	}
	return s.purchases.ListByUser(ctx, actor.ID)
}

func (s *PurchaseService) ListAll(ctx context.Context, actor *models.User, page utils.PageParams) (*PurchasePage, error) {
	if err := Authorize(actor, ActionListPurchases, bson.NilObjectID); err != nil {
		return nil, err
	}

	purchases, total, err := s.purchases.List(ctx, page.Skip(), int64(page.Limit))
	if err != nil {
		return nil, err
	}
	return &PurchasePage{Purchases: purchases, Pagination: page.Paginate(total)}, nil
}

// GetByID hides nothing about existence: a missing purchase is NotFound for everyone,
// an existing one is Forbidden for anybody but its owner and admins.
func (s *PurchaseService) GetByID(ctx context.Context, actor *models.User, rawID string) (*models.PurchaseView, error) {
	if actor == nil {
		return nil, utils.Unauthenticated("Access token required")
	}
	id, err := bson.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, utils.NotFound(msgPurchaseNotFound)
	}

	view, err := s.purchases.View(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NotFound(msgPurchaseNotFound)
		}
		return nil, err
	}
	if err := Authorize(actor, ActionViewPurchase, view.UserID); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *PurchaseService) observe(err error) {
	result := "success"
	if err != nil {
		switch utils.KindOf(err) {
		case utils.KindConflict:
			result = "conflict"
		case utils.KindNotFound:
			result = "not_found"
		default:
			result = "error"
		}
	}
	s.results.WithLabelValues(result).Inc()
}
