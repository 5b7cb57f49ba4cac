package validators

import (
	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"ukbus/internal/utils"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterValidation("object_id", validateObjectID)
	validate.RegisterValidation("togo_phone", validateTogoPhone)
	validate.RegisterValidation("network", validateNetwork)
}

// ValidateStruct runs the registered rules and flattens failures into a
// field -> message map for the response envelope.
func ValidateStruct(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		errors["_"] = err.Error()
		return errors
	}

	for _, fieldErr := range validationErrors {
		errors[fieldErr.Field()] = messageForTag(fieldErr)
	}

	return errors
}

func messageForTag(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "this field is required"
	case "togo_phone":
		return "invalid togolese phone number, use 90123456 or +22890123456"
	case "object_id":
		return "invalid id format"
	case "network":
		return "network must be FLOOZ, TMONEY or AUTO"
	case "min":
		return "value below minimum " + fieldErr.Param()
	case "max":
		return "value above maximum " + fieldErr.Param()
	case "gt":
		return "value must be greater than " + fieldErr.Param()
	default:
		return "invalid value"
	}
}

func validateObjectID(fl validator.FieldLevel) bool {
	_, err := primitive.ObjectIDFromHex(fl.Field().String())
	return err == nil
}

func validateTogoPhone(fl validator.FieldLevel) bool {
	return utils.IsValidTogolesePhone(fl.Field().String())
}

func validateNetwork(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "", "FLOOZ", "TMONEY", "AUTO":
		return true
	default:
		return false
	}
}
