package helpers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/modaltela/modal-tela-api/app/apperrors"
	"github.com/modaltela/modal-tela-api/app/models"
	"github.com/modaltela/modal-tela-api/app/policy"
	"golang.org/x/crypto/bcrypt"
)

type contextKey string

const (
	ContextKeyUser       contextKey = "userObject"
	ContextKeySessionKey contextKey = "sessionKey"
)

func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, ContextKeyUser, user)
}

func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(ContextKeyUser).(*models.User)
	return user
}

func WithSessionKey(ctx context.Context, key string) context.Context {
	return context.WithValue(ctx, ContextKeySessionKey, key)
}

func SessionKeyFromContext(ctx context.Context) string {
	key, _ := ctx.Value(ContextKeySessionKey).(string)
	return key
}

// ActorFromContext combines the authenticated user and the anonymous session key.
func ActorFromContext(ctx context.Context) policy.Actor {
	actor := policy.Actor{SessionKey: SessionKeyFromContext(ctx)}
	if user := UserFromContext(ctx); user != nil {
		actor.UserID = user.ID
		actor.Role = user.Role
	}
	return actor
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// Validate checks validate tags on input and reports failures as a validation error.
func Validate(input interface{}) error {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.ValidationFields(FormatValidationErrors(verrs))
	}
	return apperrors.Validation(err.Error())
}

func FormatValidationErrors(errs validator.ValidationErrors) map[string]string {
	errorMessages := make(map[string]string)
	for _, err := range errs {
		field := fieldPath(err)
		switch err.Tag() {
		case "required":
			errorMessages[field] = "this field is required"
		case "email":
			errorMessages[field] = "must be a valid email address"
		case "numeric":
			errorMessages[field] = "must be numeric"
		case "min":
			errorMessages[field] = fmt.Sprintf("must be at least %s", err.Param())
		case "max":
			errorMessages[field] = fmt.Sprintf("must be at most %s", err.Param())
		case "oneof":
			errorMessages[field] = fmt.Sprintf("must be one of: %s", err.Param())
		case "eqfield":
			errorMessages[field] = fmt.Sprintf("must match %s", err.Param())
		default:
			errorMessages[field] = fmt.Sprintf("failed %s validation", err.Tag())
		}
	}
	return errorMessages
}

// fieldPath drops the root struct name so nested fields read "billing.email" or "items[0].quantity".
func fieldPath(err validator.FieldError) string {
	ns := err.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return err.Field()
}

func PasswordCompare(hashPass string, password []byte) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashPass), password)
	if err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Printf("PasswordCompare: %v", err)
		}
		return false
	}
	return true
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}
