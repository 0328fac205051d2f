package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/princinho/coursemarket/utils"
	"go.uber.org/zap"
)

var tagNamesOnce sync.Once

// useTagNames makes validator report json/form names instead of Go field names.
func useTagNames() {
	tagNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

func bindJSON(c *gin.Context, log *zap.Logger, dst any) bool {
	useTagNames()
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondError(c, log, utils.ValidationError("Validation error", validationDetails(err)))
		return false
	}
	return true
}

func bindQuery(c *gin.Context, log *zap.Logger, dst any) bool {
	useTagNames()
	if err := c.ShouldBindQuery(dst); err != nil {
		utils.RespondError(c, log, utils.ValidationError("Validation error", validationDetails(err)))
		return false
	}
	return true
}

func validationDetails(err error) string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) || len(ve) == 0 {
		return "Request body is not valid JSON"
	}

	fe := ve[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s cannot exceed %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s cannot exceed %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "mongodb":
		return fmt.Sprintf("%s must be a valid id", field)
	case "nefield":
		return fmt.Sprintf("%s must differ from the current password", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
