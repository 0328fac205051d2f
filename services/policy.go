package services

import (
	"github.com/princinho/coursemarket/models"
	"github.com/princinho/coursemarket/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
)

type Action string

const (
	ActionManageCourses Action = "courses:manage"
	ActionListPurchases Action = "purchases:list"
	ActionViewPurchase  Action = "purchases:view"
	ActionManageUsers   Action = "users:manage"
)

// Authorize is the single authorization decision point. owner is the id of the user
// the resource belongs to, or the zero id for resources nobody owns.
func Authorize(actor *models.User, action Action, owner bson.ObjectID) error {
	if actor == nil {
		return utils.Unauthenticated("Access token required")
	}
	if actor.IsAdmin() {
		return nil
	}

	switch action {
	case ActionViewPurchase:
		if !owner.IsZero() && owner == actor.ID {
			return nil
		}
		return utils.Forbidden("Access denied")
	default:
		return utils.Forbidden("Admin access required")
	}
}
