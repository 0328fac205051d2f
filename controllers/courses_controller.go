package controllers

import (
	"github.com/gin-gonic/gin"
	"github.com/princinho/coursemarket/dto"
	"github.com/princinho/coursemarket/middleware"
	"github.com/princinho/coursemarket/services"
	"github.com/princinho/coursemarket/utils"
	"go.uber.org/zap"
)

type CoursesController struct {
	courses *services.CourseService
	log     *zap.Logger
}

func NewCoursesController(courses *services.CourseService, log *zap.Logger) *CoursesController {
	return &CoursesController{courses: courses, log: log}
}

// GET /api/courses
func (h *CoursesController) List() gin.HandlerFunc {
	return func(c *gin.Context) {
		var q dto.CourseListQuery
		if !bindQuery(c, h.log, &q) {
			return
		}

		result, err := h.courses.List(c.Request.Context(), q)
		if err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.OK(c, "", result)
	}
}

// GET /api/courses/:id
func (h *CoursesController) Get() gin.HandlerFunc {
	return func(c *gin.Context) {
		course, err := h.courses.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.OK(c, "", gin.H{"course": course})
	}
}

// POST /api/courses
func (h *CoursesController) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CourseDTO
		if !bindJSON(c, h.log, &body) {
			return
		}

		course, err := h.courses.Create(c.Request.Context(), middleware.CurrentUser(c), body)
		if err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.Created(c, "Course created successfully", gin.H{"course": course})
	}
}

// PUT /api/courses/:id
func (h *CoursesController) Update() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body dto.CourseDTO
		if !bindJSON(c, h.log, &body) {
			return
		}

		course, err := h.courses.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("id"), body)
		if err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.OK(c, "Course updated successfully", gin.H{"course": course})
	}
}

// DELETE /api/courses/:id
func (h *CoursesController) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := h.courses.Delete(c.Request.Context(), middleware.CurrentUser(c), c.Param("id")); err != nil {
			utils.RespondError(c, h.log, err)
			return
		}
		utils.OK(c, "Course deleted successfully", nil)
	}
}
