package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

const DefaultPaymentMethod = "credit_card"

type Purchase struct {
	ID            bson.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID        bson.ObjectID `bson:"userId" json:"userId"`
	CourseID      bson.ObjectID `bson:"courseId" json:"courseId"`
	Amount        float64       `bson:"amount" json:"amount"`
	PurchaseDate  time.Time     `bson:"purchaseDate" json:"purchaseDate"`
	PaymentStatus PaymentStatus `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod string        `bson:"paymentMethod" json:"paymentMethod"`
	CreatedAt     time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time     `bson:"updatedAt" json:"updatedAt"`
}

// PurchaseView is a purchase joined with its user and course. Either side is nil when
// the join was not requested or the referenced document is gone.
type PurchaseView struct {
	ID            bson.ObjectID  `bson:"_id" json:"id"`
	UserID        bson.ObjectID  `bson:"userId" json:"userId"`
	CourseID      bson.ObjectID  `bson:"courseId" json:"courseId"`
	User          *UserSummary   `bson:"user,omitempty" json:"user,omitempty"`
	Course        *CourseSummary `bson:"course,omitempty" json:"course,omitempty"`
	Amount        float64        `bson:"amount" json:"amount"`
	PurchaseDate  time.Time      `bson:"purchaseDate" json:"purchaseDate"`
	PaymentStatus PaymentStatus  `bson:"paymentStatus" json:"paymentStatus"`
	PaymentMethod string         `bson:"paymentMethod" json:"paymentMethod"`
	CreatedAt     time.Time      `bson:"createdAt" json:"createdAt"`
}

// View returns p without its joined user and course.
func (p *Purchase) View() *PurchaseView {
	return &PurchaseView{
		ID:            p.ID,
		UserID:        p.UserID,
		CourseID:      p.CourseID,
		Amount:        p.Amount,
		PurchaseDate:  p.PurchaseDate,
		PaymentStatus: p.PaymentStatus,
		PaymentMethod: p.PaymentMethod,
		CreatedAt:     p.CreatedAt,
	}
}
