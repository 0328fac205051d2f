package services

import (
	"context"

	"github.com/princinho/coursemarket/models"
	"github.com/princinho/coursemarket/utils"
	"go.uber.org/zap"
)

var sampleCourses = []models.Course{
	{
		Title:       "JavaScript Fundamentals",
		Description: "Learn JavaScript from scratch with hands-on examples",
		Price:       49.99,
		Instructor:  "John Smith",
		Category:    "Programming",
		Level:       models.LevelBeginner,
		Duration:    "10 hours",
	},
	{
		Title:       "React.js Advanced",
		Description: "Master React with hooks, context, and advanced patterns",
		Price:       99.99,
		Instructor:  "Jane Doe",
		Category:    "Web Development",
		Level:       models.LevelAdvanced,
		Duration:    "20 hours",
	},
	{
		Title:       "Node.js Backend Development",
		Description: "Build scalable backend applications with Node.js",
		Price:       79.99,
		Instructor:  "Mike Johnson",
		Category:    "Backend",
		Level:       models.LevelIntermediate,
		Duration:    "15 hours",
	},
	{
		Title:       "MongoDB Database Design",
		Description: "Learn NoSQL database design and optimization",
		Price:       59.99,
		Instructor:  "Sarah Wilson",
		Category:    "Database",
		Level:       models.LevelIntermediate,
		Duration:    "12 hours",
	},
	{
		Title:       "Python for Data Science",
		Description: "Analyze data using Python, Pandas, and NumPy",
		Price:       89.99,
		Instructor:  "David Brown",
		Category:    "Data Science",
		Level:       models.LevelBeginner,
		Duration:    "18 hours",
	},
}

// SeedSamples fills an empty catalog with the demo courses and reports how many it
// inserted. A catalog that already lists courses is left alone.
func (s *CourseService) SeedSamples(ctx context.Context) (int, error) {
	_, total, err := s.courses.List(ctx, models.CourseFilter{SortBy: "createdAt", SortOrder: "desc", Page: 1, Limit: 1})
	if err != nil {
		return 0, err
	}
	if total > 0 {
		s.log.Info("catalog not empty, skipping sample courses", zap.Int64("courses", total))
		return 0, nil
	}

	for i := range sampleCourses {
		course := sampleCourses[i]
		course.Slug = utils.GenerateSlug(course.Title)
		course.IsActive = true
		if err := s.courses.Create(ctx, &course); err != nil {
			return i, err
		}
	}

	s.invalidate(ctx)
	s.log.Info("sample courses seeded", zap.Int("count", len(sampleCourses)))
	return len(sampleCourses), nil
}
