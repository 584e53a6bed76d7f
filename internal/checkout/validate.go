package checkout

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/kurokira/storefront-backend/pkg/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validatePersonal checks the first step's fields and returns a field-level
// details map on failure.
func validatePersonal(data PersonalData) error {
	if err := validate.Struct(data); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "personal data is invalid").
			WithDetails(fieldErrors(err))
	}
	return nil
}

// validateShipping checks the second step. Address fields are only required
// when the method calls for delivery.
func validateShipping(data ShippingData) error {
	details := map[string]string{}
	if !data.Method.IsValid() {
		details["method"] = "a shipping method is required"
	}
	if data.Method.RequiresAddress() {
		for field, value := range map[string]string{
			"street":       data.Street,
			"streetNumber": data.StreetNumber,
			"city":         data.City,
			"province":     data.Province,
			"postalCode":   data.PostalCode,
		} {
			if strings.TrimSpace(value) == "" {
				details[field] = "required for delivery"
			}
		}
	}
	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "shipping data is invalid").
			WithDetails(details)
	}
	return nil
}

func fieldErrors(err error) map[string]string {
	details := map[string]string{}
	var invalid validator.ValidationErrors
	if !errors.As(err, &invalid) {
		details["_"] = err.Error()
		return details
	}
	for _, fe := range invalid {
		field := jsonFieldName(fe)
		switch fe.Tag() {
		case "required":
			details[field] = "is required"
		case "min":
			details[field] = "is too short"
		case "email":
			details[field] = "must be a valid email"
		default:
			details[field] = "is invalid"
		}
	}
	return details
}

func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return "_"
	}
	return strings.ToLower(name[:1]) + name[1:]
}
