package controllers

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/princinho/coursemarket/middleware"
	"github.com/princinho/coursemarket/services"
	"github.com/princinho/coursemarket/utils"
	"go.uber.org/zap"
)

type RouterDeps struct {
	Auth      *services.AuthService
	Users     *services.UserService
	Courses   *services.CourseService
	Purchases *services.PurchaseService
	DB        Pinger

	// Optional.
	Metrics        *middleware.HTTPMetrics
	MetricsHandler http.Handler
	AuthLimiter    *middleware.IPRateLimiter
	AllowedOrigins []string

	Log *zap.Logger
}

func NewRouter(d RouterDeps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestLogger(log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Handler())
	}

	allowedOrigins := map[string]bool{}
	for _, origin := range d.AllowedOrigins {
		allowedOrigins[origin] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	authn := middleware.AuthMiddleware(d.Auth, log)
	authCtl := NewAuthController(d.Auth, log)
	coursesCtl := NewCoursesController(d.Courses, log)
	purchasesCtl := NewPurchasesController(d.Purchases, log)
	usersCtl := NewUsersController(d.Users, log)

	api := r.Group("/api")
	api.GET("/health", Health(d.DB, log))
	if d.MetricsHandler != nil {
		api.GET("/metrics", gin.WrapH(d.MetricsHandler))
	}

	auth := api.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(middleware.RateLimit(d.AuthLimiter, log))
	}
	{
		auth.POST("/register", authCtl.Register())
		auth.POST("/login", authCtl.Login())
		auth.POST("/refresh", authCtl.Refresh())
		auth.POST("/logout", authn, authCtl.Logout())
		auth.GET("/profile", authn, authCtl.Profile())
		auth.POST("/password", authn, authCtl.ChangePassword())
	}

	courses := api.Group("/courses")
	manageCourses := middleware.RequireAction(services.ActionManageCourses, log)
	{
		courses.GET("", coursesCtl.List())
		courses.GET("/:id", coursesCtl.Get())
		courses.POST("", authn, manageCourses, coursesCtl.Create())
		courses.PUT("/:id", authn, manageCourses, coursesCtl.Update())
		courses.DELETE("/:id", authn, manageCourses, coursesCtl.Delete())
	}

	purchases := api.Group("/purchases", authn)
	{
		purchases.POST("", purchasesCtl.Create())
		purchases.GET("/my", purchasesCtl.Mine())
		purchases.GET("", middleware.RequireAction(services.ActionListPurchases, log), purchasesCtl.List())
		purchases.GET("/:id", purchasesCtl.Get())
	}

	users := api.Group("/users", authn, middleware.RequireAction(services.ActionManageUsers, log))
	{
		users.GET("", usersCtl.List())
		users.GET("/:id", usersCtl.Get())
		users.DELETE("/:id", usersCtl.Delete())
	}

	r.NoRoute(func(c *gin.Context) {
		utils.Fail(c, http.StatusNotFound, "Route not found")
	})

	return r
}
