package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/princinho/coursemarket/database"
	"github.com/princinho/coursemarket/dto"
	"github.com/princinho/coursemarket/models"
	"github.com/princinho/coursemarket/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

const msgCourseNotFound = "Course not found"

type CoursePage struct {
	Courses    []models.Course  `json:"courses"`
	Pagination utils.Pagination `json:"pagination"`
}

type CourseService struct {
	courses CourseStore
	cache   CourseCache
	log     *zap.Logger
}

// NewCourseService accepts a nil cache, in which case every read hits the store.
func NewCourseService(courses CourseStore, cache CourseCache, log *zap.Logger) *CourseService {
	if cache == nil {
		cache = nopCache{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CourseService{courses: courses, cache: cache, log: log}
}

// ParseCourseFilter turns raw query parameters into a normalized filter.
func ParseCourseFilter(q dto.CourseListQuery) (models.CourseFilter, error) {
	minPrice, err := utils.ParseFloatQuery(q.MinPrice)
	if err != nil {
		return models.CourseFilter{}, utils.ValidationError("Validation error", "minPrice must be a number")
	}
	maxPrice, err := utils.ParseFloatQuery(q.MaxPrice)
	if err != nil {
		return models.CourseFilter{}, utils.ValidationError("Validation error", "maxPrice must be a number")
	}
	if minPrice != nil && maxPrice != nil && *minPrice > *maxPrice {
		return models.CourseFilter{}, utils.ValidationError("Validation error", "minPrice cannot be greater than maxPrice")
	}

	page, err := utils.ParsePageParams(q.Page, q.Limit)
	if err != nil {
		return models.CourseFilter{}, err
	}

	sortBy := q.SortBy
	if !database.SortableCourseFields[sortBy] {
		sortBy = "createdAt"
	}
	sortOrder := q.SortOrder
	if sortOrder != "asc" {
		sortOrder = "desc"
	}

	return models.CourseFilter{
		Search:    strings.TrimSpace(q.Search),
		Category:  strings.TrimSpace(q.Category),
		Level:     models.Level(q.Level),
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
		SortBy:    sortBy,
		SortOrder: sortOrder,
		Page:      page.Page,
		Limit:     page.Limit,
	}, nil
}

func (s *CourseService) List(ctx context.Context, q dto.CourseListQuery) (*CoursePage, error) {
	f, err := ParseCourseFilter(q)
	if err != nil {
		return nil, err
	}

	key := listCacheKey(f)
	var cached CoursePage
	if hit, err := s.cache.GetList(ctx, key, &cached); err != nil {
		s.log.Warn("course cache read failed", zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	courses, total, err := s.courses.List(ctx, f)
	if err != nil {
		return nil, err
	}
	page := &CoursePage{
		Courses:    courses,
		Pagination: utils.PageParams{Page: f.Page, Limit: f.Limit}.Paginate(total),
	}

	if err := s.cache.SetList(ctx, key, page); err != nil {
		s.log.Warn("course cache write failed", zap.Error(err))
	}
	return page, nil
}

// Get returns an active course; inactive courses are indistinguishable from missing ones.
func (s *CourseService) Get(ctx context.Context, rawID string) (*models.Course, error) {
	id, err := bson.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, utils.NotFound(msgCourseNotFound)
	}

	var cached models.Course
	if hit, err := s.cache.GetCourse(ctx, id.Hex(), &cached); err != nil {
		s.log.Warn("course cache read failed", zap.Error(err))
	} else if hit {
		return &cached, nil
	}

	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NotFound(msgCourseNotFound)
		}
		return nil, err
	}
	if !course.IsActive {
		return nil, utils.NotFound(msgCourseNotFound)
	}

	if err := s.cache.SetCourse(ctx, course); err != nil {
		s.log.Warn("course cache write failed", zap.Error(err))
	}
	return course, nil
}

func (s *CourseService) Create(ctx context.Context, actor *models.User, in dto.CourseDTO) (*models.Course, error) {
	if err := Authorize(actor, ActionManageCourses, bson.NilObjectID); err != nil {
		return nil, err
	}

	level := models.Level(in.Level)
	if level == "" {
		level = models.LevelBeginner
	}
	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}

	course := &models.Course{
		Title:       strings.TrimSpace(in.Title),
		Slug:        utils.GenerateSlug(in.Title),
		Description: strings.TrimSpace(in.Description),
		Price:       *in.Price,
		Instructor:  strings.TrimSpace(in.Instructor),
		Category:    strings.TrimSpace(in.Category),
		Duration:    strings.TrimSpace(in.Duration),
		Level:       level,
		IsActive:    active,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("course created", zap.String("course_id", course.ID.Hex()), zap.String("by", actor.ID.Hex()))
	return course, nil
}

// Update replaces the editable fields of a course, active or not.
func (s *CourseService) Update(ctx context.Context, actor *models.User, rawID string, in dto.CourseDTO) (*models.Course, error) {
	if err := Authorize(actor, ActionManageCourses, bson.NilObjectID); err != nil {
		return nil, err
	}
	id, err := bson.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, utils.NotFound(msgCourseNotFound)
	}

	set := bson.M{
		"title":       strings.TrimSpace(in.Title),
		"slug":        utils.GenerateSlug(in.Title),
		"description": strings.TrimSpace(in.Description),
		"price":       *in.Price,
		"instructor":  strings.TrimSpace(in.Instructor),
		"category":    strings.TrimSpace(in.Category),
		"duration":    strings.TrimSpace(in.Duration),
	}
	if in.Level != "" {
		set["level"] = models.Level(in.Level)
	}
	if in.IsActive != nil {
		set["isActive"] = *in.IsActive
	}

	course, err := s.courses.Update(ctx, id, set)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NotFound(msgCourseNotFound)
		}
		return nil, err
	}

	s.invalidate(ctx)
	return course, nil
}

func (s *CourseService) Delete(ctx context.Context, actor *models.User, rawID string) error {
	if err := Authorize(actor, ActionManageCourses, bson.NilObjectID); err != nil {
		return err
	}
	id, err := bson.ObjectIDFromHex(rawID)
	if err != nil {
		return utils.NotFound(msgCourseNotFound)
	}

	if err := s.courses.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return utils.NotFound(msgCourseNotFound)
		}
		return err
	}

	s.invalidate(ctx)
	s.log.Info("course deleted", zap.String("course_id", id.Hex()), zap.String("by", actor.ID.Hex()))
	return nil
}

func (s *CourseService) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("course cache invalidation failed", zap.Error(err))
	}
}

func listCacheKey(f models.CourseFilter) string {
	price := func(p *float64) string {
		if p == nil {
			return "-"
		}
		return fmt.Sprintf("%g", *p)
	}
	return fmt.Sprintf("q=%s|c=%s|l=%s|min=%s|max=%s|s=%s:%s|p=%d:%d",
		strings.ToLower(f.Search), strings.ToLower(f.Category), f.Level,
		price(f.MinPrice), price(f.MaxPrice),
		f.SortBy, f.SortOrder, f.Page, f.Limit,
	)
}
