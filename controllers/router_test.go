package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/princinho/coursemarket/database/memstore"
	"github.com/princinho/coursemarket/middleware"
	"github.com/princinho/coursemarket/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Details string          `json:"details"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	auth   *services.AuthService
}

func newTestServer(t *testing.T, db Pinger) *testServer {
	t.Helper()
	mem := memstore.New()
	if db == nil {
		db = mem
	}
	reg := prometheus.NewRegistry()

	tokens := services.NewTokenService("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	auth := services.NewAuthService(mem.Users(), tokens, nil)

	router := NewRouter(RouterDeps{
		Auth:    auth,
		Users:   services.NewUserService(mem.Users(), nil),
		Courses: services.NewCourseService(mem.Courses(), nil, nil),
		Purchases: services.NewPurchaseService(services.PurchaseServiceDeps{
			Tx:        mem,
			Purchases: mem.Purchases(),
			Courses:   mem.Courses(),
			Users:     mem.Users(),
			Registry:  reg,
		}),
		DB:             db,
		Metrics:        middleware.NewHTTPMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		AllowedOrigins: []string{"http://localhost:3000"},
	})
	return &testServer{t: t, router: router, auth: auth}
}

func (s *testServer) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

type session struct {
	User struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Role  string `json:"role"`
	} `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (s *testServer) register(name, email string) session {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
		"name": name, "email": email, "password": "secret123",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var out session
	require.NoError(s.t, json.Unmarshal(env.Data, &out))
	return out
}

func (s *testServer) login(email, password string) session {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": password})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	var out session
	require.NoError(s.t, json.Unmarshal(env.Data, &out))
	return out
}

func (s *testServer) admin() session {
	s.t.Helper()
	require.NoError(s.t, s.auth.SeedAdmin(context.Background(), "Admin", "admin@example.com", "admin123"))
	return s.login("admin@example.com", "admin123")
}

type courseJSON struct {
	ID               string  `json:"id"`
	Title            string  `json:"title"`
	Slug             string  `json:"slug"`
	Price            float64 `json:"price"`
	Level            string  `json:"level"`
	IsActive         bool    `json:"isActive"`
	EnrolledStudents int64   `json:"enrolledStudents"`
}

func (s *testServer) createCourse(token, title string, price float64) courseJSON {
	s.t.Helper()
	w, env := s.do(http.MethodPost, "/api/courses", token, gin.H{
		"title":       title,
		"description": "A thorough course about " + title,
		"price":       price,
		"instructor":  "Jane Doe",
		"category":    "Programming",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		Course courseJSON `json:"course"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &out))
	return out.Course
}

type purchaseJSON struct {
	ID       string  `json:"id"`
	UserID   string  `json:"userId"`
	CourseID string  `json:"courseId"`
	Amount   float64 `json:"amount"`
	Status   string  `json:"paymentStatus"`
	Method   string  `json:"paymentMethod"`
	User     *struct {
		Email string `json:"email"`
	} `json:"user"`
	Course *struct {
		Title string `json:"title"`
	} `json:"course"`
}

func TestPurchaseFlow(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register("Alice", "alice@example.com")
	admin := s.admin()
	course := s.createCourse(admin.AccessToken, "Course X", 50)

	assert.Equal(t, "course-x", course.Slug)
	assert.Equal(t, "Beginner", course.Level)
	assert.True(t, course.IsActive)

	var purchaseID string
	t.Run("first purchase", func(t *testing.T) {
		w, env := s.do(http.MethodPost, "/api/purchases", alice.AccessToken, gin.H{"courseId": course.ID})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "Course purchased successfully", env.Message)

		var out struct {
			Purchase purchaseJSON `json:"purchase"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.Equal(t, 50.0, out.Purchase.Amount)
		assert.Equal(t, "completed", out.Purchase.Status)
		assert.Equal(t, "credit_card", out.Purchase.Method)
		assert.Equal(t, alice.User.ID, out.Purchase.UserID)
		purchaseID = out.Purchase.ID
	})

	t.Run("second purchase is rejected", func(t *testing.T) {
		w, env := s.do(http.MethodPost, "/api/purchases", alice.AccessToken, gin.H{"courseId": course.ID})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "You have already purchased this course", env.Message)
	})

	t.Run("enrolment counted once", func(t *testing.T) {
		w, env := s.do(http.MethodGet, "/api/courses/"+course.ID, "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out struct {
			Course courseJSON `json:"course"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.Equal(t, int64(1), out.Course.EnrolledStudents)
	})

	t.Run("admin sees one purchase", func(t *testing.T) {
		w, env := s.do(http.MethodGet, "/api/purchases", admin.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out struct {
			Purchases  []purchaseJSON `json:"purchases"`
			Pagination struct {
				Total int64 `json:"total"`
			} `json:"pagination"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &out))
		require.Len(t, out.Purchases, 1)
		assert.Equal(t, int64(1), out.Pagination.Total)
		assert.Equal(t, 50.0, out.Purchases[0].Amount)
		require.NotNil(t, out.Purchases[0].User)
		assert.Equal(t, "alice@example.com", out.Purchases[0].User.Email)
		require.NotNil(t, out.Purchases[0].Course)
		assert.Equal(t, "Course X", out.Purchases[0].Course.Title)
	})

	t.Run("users cannot list every purchase", func(t *testing.T) {
		w, env := s.do(http.MethodGet, "/api/purchases", alice.AccessToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Admin access required", env.Message)
	})

	t.Run("my purchases", func(t *testing.T) {
		w, env := s.do(http.MethodGet, "/api/purchases/my", alice.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out struct {
			Purchases []purchaseJSON `json:"purchases"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &out))
		require.Len(t, out.Purchases, 1)
		assert.Equal(t, course.ID, out.Purchases[0].CourseID)
	})

	t.Run("purchase detail is owner only", func(t *testing.T) {
		bob := s.register("Bob", "bob@example.com")

		w, env := s.do(http.MethodGet, "/api/purchases/"+purchaseID, bob.AccessToken, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Access denied", env.Message)

		w, _ = s.do(http.MethodGet, "/api/purchases/"+purchaseID, alice.AccessToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w, _ = s.do(http.MethodGet, "/api/purchases/"+purchaseID, admin.AccessToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w, env = s.do(http.MethodGet, "/api/purchases/"+bson.NewObjectID().Hex(), bob.AccessToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Purchase not found", env.Message)
	})

	t.Run("owned courses show on the user", func(t *testing.T) {
		w, env := s.do(http.MethodGet, "/api/users/"+alice.User.ID, admin.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var out struct {
			User struct {
				PurchasedCourses []struct {
					Title string `json:"title"`
				} `json:"purchasedCourses"`
			} `json:"user"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &out))
		require.Len(t, out.User.PurchasedCourses, 1)
		assert.Equal(t, "Course X", out.User.PurchasedCourses[0].Title)
	})

	t.Run("unknown course", func(t *testing.T) {
		w, env := s.do(http.MethodPost, "/api/purchases", alice.AccessToken, gin.H{"courseId": bson.NewObjectID().Hex()})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Course not found or inactive", env.Message)
	})

	t.Run("malformed course id", func(t *testing.T) {
		w, env := s.do(http.MethodPost, "/api/purchases", alice.AccessToken, gin.H{"courseId": "abc"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Validation error", env.Message)
		assert.Equal(t, "courseId must be a valid id", env.Details)
	})

	t.Run("anonymous purchase", func(t *testing.T) {
		w, env := s.do(http.MethodPost, "/api/purchases", "", gin.H{"courseId": course.ID})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Access token required", env.Message)
	})
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t, nil)
	alice := s.register("Alice", "alice@example.com")

	t.Run("register never grants admin", func(t *testing.T) {
		assert.Equal(t, "user", alice.User.Role)
	})

	t.Run("duplicate email", func(t *testing.T) {
		w, env := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
			"name": "Alice Again", "email": "ALICE@example.com", "password": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "User already exists with this email", env.Message)
	})

	t.Run("validation", func(t *testing.T) {
		w, env := s.do(http.MethodPost, "/api/auth/register", "", gin.H{
			"name": "Al", "email": "not-an-email", "password": "secret123",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Validation error", env.Message)
		assert.Equal(t, "email must be a valid email", env.Details)

		w, env = s.do(http.MethodPost, "/api/auth/register", "", gin.H{"email": "x@example.com"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "name is required", env.Details)
	})

	t.Run("wrong password", func(t *testing.T) {
		w, env := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "alice@example.com", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid email or password", env.Message)

		w, env = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ghost@example.com", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid email or password", env.Message)
	})

	t.Run("profile", func(t *testing.T) {
		w, env := s.do(http.MethodGet, "/api/auth/profile", alice.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, string(env.Data), "alice@example.com")
		assert.NotContains(t, w.Body.String(), "password")
		assert.NotContains(t, w.Body.String(), "refreshTokens")

		w, env = s.do(http.MethodGet, "/api/auth/profile", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid token", env.Message)
	})

	t.Run("refresh rotates", func(t *testing.T) {
		w, env := s.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": alice.RefreshToken})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "Token refreshed successfully", env.Message)
		var rotated session
		require.NoError(t, json.Unmarshal(env.Data, &rotated))
		assert.NotEqual(t, alice.RefreshToken, rotated.RefreshToken)

		w, env = s.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": alice.RefreshToken})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid refresh token", env.Message)

		// replaying the old token ended every session, the rotated one included
		w, _ = s.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": rotated.RefreshToken})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout ends the session", func(t *testing.T) {
		sess := s.login("alice@example.com", "secret123")

		w, env := s.do(http.MethodPost, "/api/auth/logout", sess.AccessToken, gin.H{"refreshToken": sess.RefreshToken})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Logout successful", env.Message)

		w, _ = s.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": sess.RefreshToken})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("logout without body", func(t *testing.T) {
		sess := s.login("alice@example.com", "secret123")
		w, _ := s.do(http.MethodPost, "/api/auth/logout", sess.AccessToken, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("change password", func(t *testing.T) {
		sess := s.login("alice@example.com", "secret123")

		w, env := s.do(http.MethodPost, "/api/auth/password", sess.AccessToken, gin.H{
			"currentPassword": "wrong-one", "newPassword": "newsecret1",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Current password is incorrect", env.Message)

		w, _ = s.do(http.MethodPost, "/api/auth/password", sess.AccessToken, gin.H{
			"currentPassword": "secret123", "newPassword": "newsecret1",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w, _ = s.do(http.MethodPost, "/api/auth/refresh", "", gin.H{"refreshToken": sess.RefreshToken})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		s.login("alice@example.com", "newsecret1")
	})
}

func TestCourseCatalog(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.admin()
	alice := s.register("Alice", "alice@example.com")

	cheap := s.createCourse(admin.AccessToken, "Cheap Course", 10)
	mid := s.createCourse(admin.AccessToken, "Middle Course", 75)
	s.createCourse(admin.AccessToken, "Pricey Course", 200)

	list := func(t *testing.T, query string) []courseJSON {
		t.Helper()
		w, env := s.do(http.MethodGet, "/api/courses"+query, "", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out struct {
			Courses []courseJSON `json:"courses"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &out))
		return out.Courses
	}

	t.Run("price range", func(t *testing.T) {
		got := list(t, "?minPrice=50&maxPrice=100")
		require.Len(t, got, 1)
		assert.Equal(t, mid.ID, got[0].ID)
	})

	t.Run("sort by price", func(t *testing.T) {
		got := list(t, "?sortBy=price&sortOrder=asc")
		require.Len(t, got, 3)
		assert.Equal(t, []float64{10, 75, 200}, []float64{got[0].Price, got[1].Price, got[2].Price})
	})

	t.Run("bad filters", func(t *testing.T) {
		w, env := s.do(http.MethodGet, "/api/courses?minPrice=cheap", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Validation error", env.Message)

		w, _ = s.do(http.MethodGet, "/api/courses?minPrice=100&maxPrice=50", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w, env = s.do(http.MethodGet, "/api/courses?page=92233720368547760&limit=100", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "page cannot exceed 1000000", env.Details)

		w, env = s.do(http.MethodGet, "/api/courses?level=Expert", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "level must be one of: Beginner, Intermediate, Advanced", env.Details)
	})

	t.Run("writes are admin only", func(t *testing.T) {
		body := gin.H{"title": "Sneaky", "description": "Ten chars at least", "price": 1, "instructor": "Eve"}

		w, env := s.do(http.MethodPost, "/api/courses", alice.AccessToken, body)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Admin access required", env.Message)

		w, _ = s.do(http.MethodPost, "/api/courses", "", body)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("create validation", func(t *testing.T) {
		w, env := s.do(http.MethodPost, "/api/courses", admin.AccessToken, gin.H{
			"title": "Negative", "description": "Costs less than nothing", "price": -5, "instructor": "Eve",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "price must be at least 0", env.Details)

		w, env = s.do(http.MethodPost, "/api/courses", admin.AccessToken, gin.H{
			"title": "Free", "description": "Price is missing here", "instructor": "Eve",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "price is required", env.Details)
	})

	t.Run("update", func(t *testing.T) {
		w, env := s.do(http.MethodPut, "/api/courses/"+cheap.ID, admin.AccessToken, gin.H{
			"title": "Cheap Course Redux", "description": "Now with more content", "price": 15, "instructor": "Jane Doe",
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var out struct {
			Course courseJSON `json:"course"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &out))
		assert.Equal(t, 15.0, out.Course.Price)
		assert.Equal(t, "cheap-course-redux", out.Course.Slug)
	})

	t.Run("delete", func(t *testing.T) {
		w, env := s.do(http.MethodDelete, "/api/courses/"+bson.NewObjectID().Hex(), admin.AccessToken, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Course not found", env.Message)

		w, env = s.do(http.MethodDelete, "/api/courses/"+cheap.ID, admin.AccessToken, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "Course deleted successfully", env.Message)

		for _, c := range list(t, "") {
			assert.NotEqual(t, cheap.ID, c.ID)
		}
		w, _ = s.do(http.MethodGet, "/api/courses/"+cheap.ID, "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w, env := s.do(http.MethodGet, "/api/courses/not-an-id", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Course not found", env.Message)
	})
}

func TestUserAdministration(t *testing.T) {
	s := newTestServer(t, nil)
	admin := s.admin()
	alice := s.register("Alice", "alice@example.com")

	w, env := s.do(http.MethodGet, "/api/users", alice.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Admin access required", env.Message)

	w, env = s.do(http.MethodGet, "/api/users?limit=1", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Users      []json.RawMessage `json:"users"`
		Pagination struct {
			Pages int   `json:"pages"`
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Users, 1)
	assert.Equal(t, int64(2), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.Pages)

	for _, path := range []string{"/api/users", "/api/purchases"} {
		w, env = s.do(http.MethodGet, path+"?page=92233720368547760&limit=100", admin.AccessToken, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
		assert.Equal(t, "Validation error", env.Message, path)
	}

	w, env = s.do(http.MethodGet, "/api/users?page=1000000", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(env.Data), `"users":[]`)

	w, env = s.do(http.MethodDelete, "/api/users/"+admin.User.ID, admin.AccessToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You cannot delete your own account", env.Message)

	w, _ = s.do(http.MethodDelete, "/api/users/"+alice.User.ID, admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = s.do(http.MethodGet, "/api/auth/profile", alice.AccessToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token - user not found", env.Message)
}

type downDB struct{}

func (downDB) Ping(context.Context) error { return errors.New("no reachable servers") }

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	w, _ := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Course Management API is running!", body["message"])
	assert.Equal(t, "connected", body["database"])
	assert.NotEmpty(t, body["timestamp"])

	down := newTestServer(t, downDB{})
	w, env := down.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Database unavailable", env.Message)
	assert.NotContains(t, w.Body.String(), "reachable")
}

func TestRouting(t *testing.T) {
	s := newTestServer(t, nil)

	w, env := s.do(http.MethodGet, "/api/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Route not found", env.Message)

	t.Run("metrics", func(t *testing.T) {
		w, _ := s.do(http.MethodGet, "/api/metrics", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `http_requests_total{method="GET",route="unmatched",status="404"} 1`)
	})

	t.Run("cors", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/courses", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		req.Header.Set("Access-Control-Request-Method", "POST")
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

		req = httptest.NewRequest(http.MethodGet, "/api/courses", nil)
		req.Header.Set("Origin", "http://evil.example")
		w = httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
