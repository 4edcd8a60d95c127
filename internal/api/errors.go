package api

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/forkful/backend/internal/models"
)

// bindingErrors turns a ShouldBindJSON failure into a field-keyed error
// body so clients can attach messages to form fields.
func bindingErrors(err error) gin.H {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string][]string, len(verrs))
		for _, fe := range verrs {
			field := strings.ToLower(fe.Field())
			fields[field] = append(fields[field], validationMessage(fe))
		}
		return gin.H{"errors": fields}
	}
	return gin.H{"error": "invalid request body"}
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// validateRecipePayload covers the constraints binding tags cannot
// express: non-empty, duplicate-free tag and ingredient lists, and the
// amount bounds on each ingredient row.
func validateRecipePayload(req *RecipeRequest) map[string][]string {
	fields := make(map[string][]string)

	if len(req.Tags) == 0 {
		fields["tags"] = append(fields["tags"], "at least one tag is required")
	}
	seenTags := make(map[string]bool, len(req.Tags))
	for _, id := range req.Tags {
		if seenTags[id.String()] {
			fields["tags"] = append(fields["tags"], "tags must not repeat")
			break
		}
		seenTags[id.String()] = true
	}

	if len(req.Ingredients) == 0 {
		fields["ingredients"] = append(fields["ingredients"], "at least one ingredient is required")
	}
	seenIngredients := make(map[string]bool, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		if seenIngredients[ing.ID.String()] {
			fields["ingredients"] = append(fields["ingredients"], "ingredients must not repeat")
			break
		}
		seenIngredients[ing.ID.String()] = true
	}
	for _, ing := range req.Ingredients {
		if ing.Amount < models.MinAmount || ing.Amount > models.MaxAmount {
			fields["ingredients"] = append(fields["ingredients"],
				fmt.Sprintf("amount must be between %d and %d", models.MinAmount, models.MaxAmount))
			break
		}
	}

	if req.CookingTime < models.MinCookingTime || req.CookingTime > models.MaxCookingTime {
		fields["cooking_time"] = append(fields["cooking_time"],
			fmt.Sprintf("cooking time must be between %d and %d minutes", models.MinCookingTime, models.MaxCookingTime))
	}

	if len(fields) == 0 {
		return nil
	}
	return fields
}
