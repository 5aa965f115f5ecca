package model

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Limits enforced on user-entered records.
const (
	MaxDescriptionLen  = 200
	MaxCategoryNameLen = 50
)

var (
	// MaxAmount is the largest amount a single transaction may carry.
	MaxAmount = decimal.RequireFromString("999999.99")

	earliestDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	hundred      = decimal.NewFromInt(100)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// notblank: at least one non-space rune.
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.IndexFunc(fl.Field().String(), func(r rune) bool { return !unicode.IsSpace(r) }) >= 0
	})
	return v
}

// ValidationError describes a single rule violation on one field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is every violation found on a record.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// ValidateAmount checks a transaction amount: positive, at most MaxAmount and
// no more than two decimal places.
func ValidateAmount(amount decimal.Decimal) error {
	switch {
	case !amount.IsPositive():
		return fmt.Errorf("amount must be greater than 0")
	case amount.GreaterThan(MaxAmount):
		return fmt.Errorf("amount cannot exceed %s", MaxAmount.StringFixed(2))
	case !amount.Mul(hundred).Equal(amount.Mul(hundred).Floor()):
		return fmt.Errorf("amount %s has more than 2 decimal places", amount)
	}
	return nil
}

// ValidateTransaction checks the caller-supplied fields of t. now bounds OccurredAt.
func ValidateTransaction(t Transaction, now time.Time) error {
	var errs ValidationErrors

	if err := ValidateAmount(t.Amount); err != nil {
		errs = append(errs, ValidationError{Field: "amount", Message: err.Error()})
	}
	if !t.Kind.Valid() {
		errs = append(errs, ValidationError{Field: "kind", Message: fmt.Sprintf("must be expense or income, got %q", t.Kind)})
	}
	if validate.Var(t.CategoryID, "required") != nil {
		errs = append(errs, ValidationError{Field: "categoryId", Message: "a category is required"})
	}
	if validate.Var(t.Description, fmt.Sprintf("max=%d", MaxDescriptionLen)) != nil {
		errs = append(errs, ValidationError{Field: "description", Message: fmt.Sprintf("cannot exceed %d characters", MaxDescriptionLen)})
	}
	switch {
	case t.OccurredAt.IsZero():
		errs = append(errs, ValidationError{Field: "occurredAt", Message: "date is required"})
	case t.OccurredAt.After(now):
		errs = append(errs, ValidationError{Field: "occurredAt", Message: "date cannot be in the future"})
	case t.OccurredAt.Before(earliestDate):
		errs = append(errs, ValidationError{Field: "occurredAt", Message: "date cannot be before 1900"})
	}
	if t.SyncStatus != "" && !t.SyncStatus.Valid() {
		errs = append(errs, ValidationError{Field: "syncStatus", Message: fmt.Sprintf("unknown status %q", t.SyncStatus)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateCategory checks the user-editable fields of c.
func ValidateCategory(c Category) error {
	var errs ValidationErrors

	if validate.Var(c.Name, fmt.Sprintf("required,notblank,max=%d", MaxCategoryNameLen)) != nil {
		errs = append(errs, ValidationError{Field: "name", Message: fmt.Sprintf("must be 1-%d characters and not only whitespace", MaxCategoryNameLen)})
	}
	if validate.Var(c.Icon, "required") != nil {
		errs = append(errs, ValidationError{Field: "icon", Message: "an icon is required"})
	}
	if validate.Var(c.Color, "required") != nil {
		errs = append(errs, ValidationError{Field: "color", Message: "a color is required"})
	}
	if !c.Kind.Valid() {
		errs = append(errs, ValidationError{Field: "kind", Message: fmt.Sprintf("must be expense or income, got %q", c.Kind)})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
