package dto

type ChangeMyPasswordDTO struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,nefield=CurrentPassword"`
}
