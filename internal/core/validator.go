package core

import (
	"log/slog"

	"github.com/go-playground/validator/v10"

	"fishcast/internal/types"
)

// Validator wraps go-playground/validator and registers domain-specific
// validation tags used by request DTOs:
//
//   - region:     a known region identifier (avrupa, anadolu, city_belt)
//   - tracelevel: a known trace level (none, minimal, full)
type Validator struct {
	validate *validator.Validate
	logger   *slog.Logger
}

// NewValidator creates a new Validator and registers the custom tags.
// Tag registration only fails for programming errors (empty tag names),
// which are logged and ignored.
func NewValidator(logger *slog.Logger) *Validator {
	v := validator.New()

	if err := v.RegisterValidation("region", validateRegion); err != nil {
		logger.Error("failed to register region validation", "error", err)
	}
	if err := v.RegisterValidation("tracelevel", validateTraceLevel); err != nil {
		logger.Error("failed to register tracelevel validation", "error", err)
	}

	return &Validator{
		validate: v,
		logger:   logger,
	}
}

// ValidateStruct validates the given struct against its validation tags.
// It returns a *types.AppError with code "validation_invalid_body" carrying
// per-field failure details, or nil if validation passes.
func (v *Validator) ValidateStruct(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		// InvalidValidationError: the caller passed a non-struct.
		return types.NewAppError(types.ErrCodeInternalUnexpected, "validation target must be a struct", err)
	}

	details := make(map[string]any, len(validationErrs))
	for _, fe := range validationErrs {
		details[fe.Field()] = "failed on " + fe.Tag()
	}

	return types.NewAppErrorWithDetails(
		types.ErrCodeValidationInvalidBody,
		"request validation failed",
		err,
		details,
	)
}

func validateRegion(fl validator.FieldLevel) bool {
	value := types.RegionID(fl.Field().String())
	for _, r := range types.AllRegions {
		if value == r {
			return true
		}
	}
	return false
}

func validateTraceLevel(fl validator.FieldLevel) bool {
	switch types.TraceLevel(fl.Field().String()) {
	case types.TraceNone, types.TraceMinimal, types.TraceFull:
		return true
	default:
		return false
	}
}
