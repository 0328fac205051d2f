package database

import (
	"testing"

	"github.com/princinho/coursemarket/models"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestCourseQuery(t *testing.T) {
	lo, hi := 50.0, 100.0

	t.Run("active only by default", func(t *testing.T) {
		assert.Equal(t, bson.M{"isActive": true}, CourseQuery(models.CourseFilter{}))
	})

	t.Run("all filters", func(t *testing.T) {
		q := CourseQuery(models.CourseFilter{
			Search:   "golang",
			Category: "web.dev",
			Level:    models.LevelAdvanced,
			MinPrice: &lo,
			MaxPrice: &hi,
		})
		assert.Equal(t, true, q["isActive"])
		assert.Equal(t, bson.M{"$search": "golang"}, q["$text"])
		assert.Equal(t, bson.Regex{Pattern: `web\.dev`, Options: "i"}, q["category"])
		assert.Equal(t, models.LevelAdvanced, q["level"])
		assert.Equal(t, bson.M{"$gte": 50.0, "$lte": 100.0}, q["price"])
	})

	t.Run("open price range", func(t *testing.T) {
		q := CourseQuery(models.CourseFilter{MinPrice: &lo})
		assert.Equal(t, bson.M{"$gte": 50.0}, q["price"])
	})
}

func TestCourseSort(t *testing.T) {
	assert.Equal(t,
		bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}},
		CourseSort("", ""),
	)
	assert.Equal(t,
		bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}},
		CourseSort("price", "asc"),
	)
	assert.Equal(t,
		bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}},
		CourseSort("password", "asc"),
	)
}
