package domain

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Messages reported for each invalid product field.
const (
	MsgNameRequired        = "Product name is required and must be a non-empty string"
	MsgDescriptionRequired = "Product description is required and must be a non-empty string"
	MsgPriceInvalid        = "Product price is required and must be a positive number"
	MsgImageRequired       = "Product image URL is required"
	MsgCategoryRequired    = "Product category is required"
	MsgStockInvalid        = "Product stock is required and must be a non-negative number"
)

var validate = validator.New()

// productRules mirrors ProductInput after type extraction. Field order is the
// order in which errors are reported.
type productRules struct {
	Name        string  `validate:"required"`
	Description string  `validate:"required"`
	Price       float64 `validate:"gt=0,lte=99999999.99"`
	Image       string  `validate:"required"`
	Category    string  `validate:"required"`
	Stock       *int64  `validate:"required,gte=0,lte=2147483647"`
}

var ruleMessages = map[string]string{
	"Name":        MsgNameRequired,
	"Description": MsgDescriptionRequired,
	"Price":       MsgPriceInvalid,
	"Image":       MsgImageRequired,
	"Category":    MsgCategoryRequired,
	"Stock":       MsgStockInvalid,
}

// ValidationResult is the outcome of ValidateProduct. Errors is non-empty
// exactly when Valid is false.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// Err returns the result as an error, or nil when the input is valid.
func (r ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return &ValidationError{Errors: r.Errors}
}

// ValidationError carries the human-readable messages of a rejected payload.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// IsValidationError reports whether err is or wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateProduct checks every field of in and collects one message per
// invalid field. It has no side effects.
func ValidateProduct(in ProductInput) ValidationResult {
	rules := productRules{}
	rules.Name, _ = in.Name.String()
	rules.Description, _ = in.Description.String()
	rules.Image, _ = in.Image.String()
	rules.Category, _ = in.Category.String()
	if price, ok := in.Price.Float(); ok {
		rules.Price = roundPrice(price)
	}
	if stock, ok := in.Stock.Int(); ok {
		rules.Stock = &stock
	}

	err := validate.Struct(rules)
	if err == nil {
		return ValidationResult{Valid: true, Errors: []string{}}
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return ValidationResult{Valid: false, Errors: []string{err.Error()}}
	}

	messages := make([]string, 0, len(fieldErrors))
	seen := make(map[string]bool, len(fieldErrors))
	for _, fe := range fieldErrors {
		if seen[fe.StructField()] {
			continue
		}
		seen[fe.StructField()] = true
		messages = append(messages, ruleMessages[fe.StructField()])
	}
	return ValidationResult{Valid: false, Errors: messages}
}

// SanitizeProduct normalizes an input that already passed ValidateProduct:
// strings are trimmed, price is rounded to cents and stock becomes an int.
// The result is undefined for inputs that were not validated.
func SanitizeProduct(in ProductInput) ProductFields {
	name, _ := in.Name.String()
	description, _ := in.Description.String()
	image, _ := in.Image.String()
	category, _ := in.Category.String()
	price, _ := in.Price.Float()
	stock, _ := in.Stock.Int()

	return ProductFields{
		Name:        name,
		Description: description,
		Price:       roundPrice(price),
		Image:       image,
		Category:    category,
		Stock:       int(stock),
	}
}

// roundPrice rounds to the two decimal places the price column stores, so a
// price that only looks positive before rounding is rejected up front.
func roundPrice(p float64) float64 {
	return decimal.NewFromFloat(p).Round(2).InexactFloat64()
}
