package services

import (
	"context"
	"errors"

	"github.com/princinho/coursemarket/database"
	"github.com/princinho/coursemarket/models"
	"github.com/princinho/coursemarket/utils"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"
)

type UserPage struct {
	Users      []models.UserDetail `json:"users"`
	Pagination utils.Pagination    `json:"pagination"`
}

type UserService struct {
	users UserStore
	log   *zap.Logger
}

func NewUserService(users UserStore, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, log: log}
}

func (s *UserService) List(ctx context.Context, actor *models.User, page utils.PageParams) (*UserPage, error) {
	if err := Authorize(actor, ActionManageUsers, bson.NilObjectID); err != nil {
		return nil, err
	}

	users, total, err := s.users.List(ctx, page.Skip(), int64(page.Limit))
	if err != nil {
		return nil, err
	}
	return &UserPage{Users: users, Pagination: page.Paginate(total)}, nil
}

func (s *UserService) Get(ctx context.Context, actor *models.User, rawID string) (*models.UserDetail, error) {
	if err := Authorize(actor, ActionManageUsers, bson.NilObjectID); err != nil {
		return nil, err
	}

	id, err := bson.ObjectIDFromHex(rawID)
	if err != nil {
		return nil, utils.NotFound("User not found")
	}
	user, err := s.users.Detail(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, utils.NotFound("User not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, actor *models.User, rawID string) error {
	if err := Authorize(actor, ActionManageUsers, bson.NilObjectID); err != nil {
		return err
	}

	id, err := bson.ObjectIDFromHex(rawID)
	if err != nil {
		return utils.NotFound("User not found")
	}
	if id == actor.ID {
		return utils.ValidationError("You cannot delete your own account", "")
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return utils.NotFound("User not found")
		}
		return err
	}
	s.log.Info("user deleted", zap.String("user_id", id.Hex()), zap.String("by", actor.ID.Hex()))
	return nil
}
