package grade

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

type Grade struct {
	ID     string `json:"id"`
	UserID string `json:"user_id"`
	Title  string `json:"title"` // assignment name
	Score  int    `json:"score"`
}

// StudentScore is one row of a class score sheet: a student joined against
// their score for a given assignment title, 0 when no row exists yet.
type StudentScore struct {
	StudentID string `json:"student_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Score     int    `json:"score"`
}

// ScoreSheet is the grade-entry view a teacher works on for one class
// section and one assignment title (empty title for a brand-new assignment).
type ScoreSheet struct {
	ClassAccess string         `json:"class_access"`
	ClassName   string         `json:"class_name"`
	GradeTitle  string         `json:"grade_title"`
	Scores      []StudentScore `json:"scores"`
}

// UpdateScores is the bulk score-update payload.
type UpdateScores struct {
	GradeTitle  string            `json:"gradetitle" validate:"required"`
	ClassAccess string            `json:"class_value" validate:"required"`
	Scores      map[string]string `json:"scores"` // student id -> raw score
}

func (us *UpdateScores) Validate(validate *validator.Validate, codes user.CodeRegistry) error {
	us.GradeTitle = core.CleanString(us.GradeTitle)
	us.ClassAccess = strings.ToUpper(core.CleanString(us.ClassAccess))

	if err := validate.Struct(us); err != nil {
		return err
	}
	if !codes.IsClass(us.ClassAccess) {
		return core.NewValidationError(nil, core.FieldError{Field: "class_value", Error: "unknown class"})
	}
	return nil
}
