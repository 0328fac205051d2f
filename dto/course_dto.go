package dto

// CourseDTO is used for both create and full update.
type CourseDTO struct {
	Title       string   `json:"title" binding:"required,min=3,max=100"`
	Description string   `json:"description" binding:"required,min=10,max=1000"`
	Price       *float64 `json:"price" binding:"required,min=0"`
	Instructor  string   `json:"instructor" binding:"required,min=2,max=50"`
	Category    string   `json:"category" binding:"omitempty,max=30"`
	Duration    string   `json:"duration"`
	Level       string   `json:"level" binding:"omitempty,oneof=Beginner Intermediate Advanced"`
	IsActive    *bool    `json:"isActive"`
}

type CourseListQuery struct {
	Page      string `form:"page"`
	Limit     string `form:"limit"`
	Search    string `form:"search"`
	Category  string `form:"category"`
	Level     string `form:"level" binding:"omitempty,oneof=Beginner Intermediate Advanced"`
	MinPrice  string `form:"minPrice"`
	MaxPrice  string `form:"maxPrice"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
}
