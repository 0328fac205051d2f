package dto

type PurchaseDTO struct {
	CourseID      string `json:"courseId" binding:"required,mongodb"`
	PaymentMethod string `json:"paymentMethod" binding:"omitempty,max=30"`
}
