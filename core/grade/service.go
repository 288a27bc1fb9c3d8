package grade

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/user"
)

var (
	// errors
	ErrNotFound     = errors.New("grade not found")
	ErrUnknownClass = errors.New("unknown class")
)

type (
	Repository interface {
		CreateGrade(ctx context.Context, g Grade) (Grade, error)
		GetGradesByUser(ctx context.Context, userID string) ([]Grade, error)
		GetGradesByTitle(ctx context.Context, title string) ([]Grade, error)
		GetGradeByUserAndTitle(ctx context.Context, userID, title string) (Grade, error)
		GetGradeTitlesByUserIDs(ctx context.Context, userIDs []string) ([]string, error)
		UpdateGrade(ctx context.Context, g Grade) (Grade, error)
	}

	Service interface {
		// ForStudent lists all of a student's own grades.
		ForStudent(ctx context.Context, studentID string) ([]Grade, error)
		// ClassTitles returns the distinct assignment titles recorded for any
		// student of the given class section.
		ClassTitles(ctx context.Context, access string) ([]string, error)
		// ClassSheet joins every student of the class against their score for
		// the given title; missing scores default to 0. An empty title yields
		// the all-zero sheet used to enter a brand-new assignment.
		ClassSheet(ctx context.Context, access, title string) (ScoreSheet, error)
		// Update applies a bulk score update. Non-atomic: rows committed
		// before a bad value stay committed.
		Update(ctx context.Context, actor user.User, us UpdateScores) error
	}

	service struct {
		repo    Repository
		usrRepo user.Repository
		codes   user.CodeRegistry
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrRepo user.Repository, codes user.CodeRegistry) Service {
	return &service{repo: repo, usrRepo: usrRepo, codes: codes}
}

func (svc *service) ForStudent(ctx context.Context, studentID string) ([]Grade, error) {
	grades, err := svc.repo.GetGradesByUser(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "listing student grades")
	}
	if grades == nil {
		grades = []Grade{}
	}
	return grades, nil
}

func (svc *service) ClassTitles(ctx context.Context, access string) ([]string, error) {
	students, err := svc.classStudents(ctx, access)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(students))
	for _, s := range students {
		ids = append(ids, s.ID)
	}
	titles, err := svc.repo.GetGradeTitlesByUserIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "listing class grade titles")
	}
	if titles == nil {
		titles = []string{}
	}
	sort.Strings(titles)
	return titles, nil
}

func (svc *service) ClassSheet(ctx context.Context, access, title string) (ScoreSheet, error) {
	students, err := svc.classStudents(ctx, access)
	if err != nil {
		return ScoreSheet{}, err
	}

	scores := make(map[string]int)
	if title != "" {
		grades, err := svc.repo.GetGradesByTitle(ctx, title)
		if err != nil {
			return ScoreSheet{}, errors.Wrap(err, "listing grades by title")
		}
		for _, g := range grades {
			scores[g.UserID] = g.Score
		}
	}

	sheet := ScoreSheet{
		ClassAccess: strings.ToUpper(access),
		GradeTitle:  title,
		Scores:      make([]StudentScore, 0, len(students)),
	}
	sheet.ClassName, _ = svc.codes.ClassName(access)
	for _, s := range students {
		sheet.Scores = append(sheet.Scores, StudentScore{
			StudentID: s.ID,
			FirstName: s.FirstName,
			LastName:  s.LastName,
			Score:     scores[s.ID], // 0 when absent
		})
	}
	return sheet, nil
}

func (svc *service) Update(ctx context.Context, actor user.User, us UpdateScores) error {
	// deterministic order; the batch aborts at the first bad value and rows
	// written before it stay written
	ids := make([]string, 0, len(us.Scores))
	for id := range us.Scores {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, studentID := range ids {
		score, err := strconv.Atoi(strings.TrimSpace(us.Scores[studentID]))
		if err != nil {
			return core.NewValidationError(errors.New("one of the scores is not a number"))
		}

		// NOTE: the existing-row lookup is keyed on the acting user, not the
		// target student; re-submitting a sheet therefore inserts duplicates
		// instead of updating. Kept for observable compatibility.
		existing, err := svc.repo.GetGradeByUserAndTitle(ctx, actor.ID, us.GradeTitle)
		switch errors.Cause(err) {
		case nil:
			existing.Score = score
			if _, err = svc.repo.UpdateGrade(ctx, existing); err != nil {
				return errors.Wrap(err, "updating grade")
			}
		case ErrNotFound:
			g := Grade{UserID: studentID, Title: us.GradeTitle, Score: score}
			if _, err = svc.repo.CreateGrade(ctx, g); err != nil {
				return errors.Wrap(err, "inserting grade")
			}
		default:
			return errors.Wrap(err, "finding existing grade")
		}
	}
	return nil
}

func (svc *service) classStudents(ctx context.Context, access string) ([]user.User, error) {
	if !svc.codes.IsClass(access) {
		return nil, ErrUnknownClass
	}
	students, err := svc.usrRepo.GetUsersByAccess(ctx, strings.ToUpper(access))
	if err != nil {
		return nil, errors.Wrap(err, "listing class students")
	}
	sort.Slice(students, func(i, j int) bool {
		if students[i].LastName != students[j].LastName {
			return students[i].LastName < students[j].LastName
		}
		return students[i].FirstName < students[j].FirstName
	})
	return students, nil
}
