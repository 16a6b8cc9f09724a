package validator

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/course-service/internal/models"
)

func intPtr(v int) *int { return &v }

func TestValidate_ProgressPatch(t *testing.T) {
	v := New()
	completed := models.EnrollmentCompleted
	bogus := models.EnrollmentStatus("finished")

	tests := []struct {
		name    string
		req     ProgressPatchRequest
		wantErr string
	}{
		{name: "empty patch", req: ProgressPatchRequest{CourseID: 1}},
		{name: "full patch", req: ProgressPatchRequest{CourseID: 1, Progress: intPtr(100), Status: &completed, ModuleIndex: intPtr(2), LessonIndex: intPtr(0)}},
		{name: "missing course", req: ProgressPatchRequest{}, wantErr: "course_id"},
		{name: "progress above 100", req: ProgressPatchRequest{CourseID: 1, Progress: intPtr(101)}, wantErr: "progress"},
		{name: "negative progress", req: ProgressPatchRequest{CourseID: 1, Progress: intPtr(-1)}, wantErr: "progress"},
		{name: "unknown status", req: ProgressPatchRequest{CourseID: 1, Status: &bogus}, wantErr: "status"},
		{name: "negative bookmark", req: ProgressPatchRequest{CourseID: 1, LessonIndex: intPtr(-3)}, wantErr: "lesson_idx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(&tt.req)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			var verrs ValidationErrors
			require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %v", err)
			assert.Equal(t, tt.wantErr, verrs[0].Field)
		})
	}
}

func TestValidate_CoursePrice(t *testing.T) {
	v := New()

	ok := CourseCreateRequest{Title: "Go", Price: decimal.RequireFromString("29.00")}
	assert.NoError(t, v.Validate(&ok))

	negative := CourseCreateRequest{Title: "Go", Price: decimal.RequireFromString("-1")}
	assert.Error(t, v.Validate(&negative))

	blank := CourseCreateRequest{Title: "   "}
	assert.Error(t, v.Validate(&blank))
}

func TestBusinessValidator_Bookmark(t *testing.T) {
	bv := New().Business()
	course := &models.Course{Curriculum: datatypes.NewJSONType(models.Curriculum{Modules: []models.CurriculumModule{
		{Title: "Intro", Lessons: []models.CurriculumLesson{{Title: "a"}, {Title: "b"}}},
		{Title: "Advanced", Lessons: []models.CurriculumLesson{{Title: "c"}}},
	}})}

	assert.Empty(t, bv.ValidateBookmark(course, intPtr(1), intPtr(0)))
	assert.Empty(t, bv.ValidateBookmark(course, nil, intPtr(1)))
	assert.NotEmpty(t, bv.ValidateBookmark(course, intPtr(2), nil))
	assert.NotEmpty(t, bv.ValidateBookmark(course, intPtr(1), intPtr(1)))

	assert.Empty(t, bv.ValidateBookmark(&models.Course{}, intPtr(9), intPtr(9)))
}

func TestBusinessValidator_Curriculum(t *testing.T) {
	bv := New().Business()
	errs := bv.ValidateCurriculum(&models.Curriculum{Modules: []models.CurriculumModule{
		{Title: "", Lessons: []models.CurriculumLesson{{Title: " "}}},
	}})
	require.Len(t, errs, 2)
	assert.Equal(t, "curriculum.modules[0].title", errs[0].Field)
	assert.Nil(t, bv.ValidateCurriculum(nil))
}
