package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	}
	return false
}

type Course struct {
	ID               bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Title            string        `bson:"title" json:"title"`
	Slug             string        `bson:"slug" json:"slug"`
	Description      string        `bson:"description" json:"description"`
	Price            float64       `bson:"price" json:"price"`
	Instructor       string        `bson:"instructor" json:"instructor"`
	Category         string        `bson:"category,omitempty" json:"category,omitempty"`
	Duration         string        `bson:"duration,omitempty" json:"duration,omitempty"`
	Level            Level         `bson:"level" json:"level"`
	IsActive         bool          `bson:"isActive" json:"isActive"`
	EnrolledStudents int64         `bson:"enrolledStudents" json:"enrolledStudents"`
	CreatedAt        time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// CourseSummary carries the projected course fields of joined views. Fields that a
// projection leaves out stay empty and are omitted from JSON.
type CourseSummary struct {
	ID          bson.ObjectID `bson:"_id" json:"id"`
	Title       string        `bson:"title" json:"title"`
	Description string        `bson:"description,omitempty" json:"description,omitempty"`
	Instructor  string        `bson:"instructor,omitempty" json:"instructor,omitempty"`
	Price       float64       `bson:"price" json:"price"`
}

// CourseFilter is the decoded catalog query.
type CourseFilter struct {
	Search    string
	Category  string
	Level     Level
	MinPrice  *float64
	MaxPrice  *float64
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}
