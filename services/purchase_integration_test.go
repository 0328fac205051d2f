//go:build integration

package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/princinho/coursemarket/config"
	"github.com/princinho/coursemarket/database"
	"github.com/princinho/coursemarket/database/dbtest"
	"github.com/princinho/coursemarket/dto"
	"github.com/princinho/coursemarket/models"
	"github.com/princinho/coursemarket/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// Concurrent buyers race through real MongoDB transactions, so write conflicts
// are retried by the driver and the losers see the committed purchase.
func TestIntegration_PurchaseConcurrent(t *testing.T) {
	ctx := context.Background()

	store, err := database.Connect(ctx, config.MongoConfig{
		URI:            dbtest.MongoURI(t),
		Database:       "course_marketplace_purchase_test",
		ConnectTimeout: 30 * time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	require.NoError(t, store.EnsureIndexes(ctx))

	users := database.NewUserRepository(store)
	courses := database.NewCourseRepository(store)
	purchases := database.NewPurchaseRepository(store)

	student := &models.User{Name: "Alice", Email: "alice@example.com", PasswordHash: "hash", Role: models.RoleUser}
	require.NoError(t, users.Create(ctx, student))
	course := &models.Course{
		Title: "Go Concurrency", Description: "Channels and goroutines in depth",
		Instructor: "Rob", Category: "Programming", Price: 50, Level: models.LevelIntermediate, IsActive: true,
	}
	require.NoError(t, courses.Create(ctx, course))

	svc := NewPurchaseService(PurchaseServiceDeps{
		Tx:        store,
		Purchases: purchases,
		Courses:   courses,
		Users:     users,
	})

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Purchase(ctx, student, dto.PurchaseDTO{CourseID: course.ID.Hex()})
		}(i)
	}
	wg.Wait()

	ok, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case utils.KindOf(err) == utils.KindConflict:
			conflicts++
		default:
			t.Errorf("unexpected purchase error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, attempts-1, conflicts)

	n, err := purchases.CountByPair(ctx, student.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := courses.FindByID(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.EnrolledStudents)

	detail, err := users.Detail(ctx, student.ID)
	require.NoError(t, err)
	assert.Len(t, detail.PurchasedCourses, 1)
}
