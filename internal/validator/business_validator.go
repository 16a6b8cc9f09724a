package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/SAP-F-2025/course-service/internal/models"
)

// BusinessValidator handles rules that need more than one field or stored state
type BusinessValidator struct{}

// ValidateBookmark checks a bookmark against the course curriculum. Courses
// without a curriculum accept any non-negative bookmark.
func (bv *BusinessValidator) ValidateBookmark(course *models.Course, moduleIdx, lessonIdx *int) ValidationErrors {
	var errs ValidationErrors

	modules := course.Curriculum.Data().Modules
	if len(modules) == 0 {
		return nil
	}

	module := 0
	if moduleIdx != nil {
		module = *moduleIdx
		if module >= len(modules) {
			errs = append(errs, ValidationError{
				Field:   "module_idx",
				Message: fmt.Sprintf("must be less than %d", len(modules)),
				Value:   module,
				Rule:    "curriculum_bounds",
			})
			return errs
		}
	}

	if lessonIdx != nil {
		lessons := len(modules[module].Lessons)
		if lessons > 0 && *lessonIdx >= lessons {
			errs = append(errs, ValidationError{
				Field:   "lesson_idx",
				Message: fmt.Sprintf("must be less than %d", lessons),
				Value:   *lessonIdx,
				Rule:    "curriculum_bounds",
			})
		}
	}

	return errs
}

// ValidateCurriculum requires every module and lesson to be titled
func (bv *BusinessValidator) ValidateCurriculum(curriculum *models.Curriculum) ValidationErrors {
	if curriculum == nil {
		return nil
	}

	var errs ValidationErrors
	for i, m := range curriculum.Modules {
		if strings.TrimSpace(m.Title) == "" {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("curriculum.modules[%d].title", i),
				Message: "is required",
				Rule:    "business_logic",
			})
		}
		for j, l := range m.Lessons {
			if strings.TrimSpace(l.Title) == "" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("curriculum.modules[%d].lessons[%d].title", i, j),
					Message: "is required",
					Rule:    "business_logic",
				})
			}
		}
	}
	return errs
}

// registerBusinessRules registers custom tag validators
func registerBusinessRules(validate *validator.Validate) {
	// Title validation (1-255 characters after trimming)
	validate.RegisterValidation("course_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 255
	})

	validate.RegisterValidation("enrollment_status", func(fl validator.FieldLevel) bool {
		switch models.EnrollmentStatus(fl.Field().String()) {
		case models.EnrollmentInProgress, models.EnrollmentCompleted:
			return true
		}
		return false
	})
}
