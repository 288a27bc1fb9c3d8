package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/darasahq/darasa/core"
	"github.com/darasahq/darasa/core/grade"
)

type gradeRow struct {
	ID     string `db:"id"`
	UserID string `db:"user_id"`
	Title  string `db:"title"`
	Score  int    `db:"score"`
}

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo gradeRepository) CreateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	g.ID = uuid.New().String()
	query := `INSERT INTO grade (id, user_id, title, score) VALUES (:id, :user_id, :title, :score)`
	if _, err := repo.db.NamedExecContext(ctx, query, gradeRow(g)); err != nil {
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return g, nil
}

func (repo gradeRepository) GetGradesByUser(ctx context.Context, userID string) ([]grade.Grade, error) {
	var rows []gradeRow
	query := `SELECT * FROM grade WHERE user_id = $1` + core.OrderBy(core.DBOrdering{Field: "title", Ascending: true})
	if err := repo.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, errors.Wrap(err, "getting grades by user")
	}
	return unpackGrades(rows), nil
}

func (repo gradeRepository) GetGradesByTitle(ctx context.Context, title string) ([]grade.Grade, error) {
	var rows []gradeRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM grade WHERE title = $1`, title); err != nil {
		return nil, errors.Wrap(err, "getting grades by title")
	}
	return unpackGrades(rows), nil
}

func (repo gradeRepository) GetGradeByUserAndTitle(ctx context.Context, userID, title string) (grade.Grade, error) {
	var row gradeRow
	query := `SELECT * FROM grade WHERE user_id = $1 AND title = $2 LIMIT 1`
	if err := repo.db.GetContext(ctx, &row, query, userID, title); err != nil {
		if err == sql.ErrNoRows {
			return grade.Grade{}, grade.ErrNotFound
		}
		return grade.Grade{}, errors.Wrap(err, "getting grade by user and title")
	}
	return grade.Grade(row), nil
}

func (repo gradeRepository) GetGradeTitlesByUserIDs(ctx context.Context, userIDs []string) ([]string, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var titles []string
	query := `SELECT DISTINCT title FROM grade WHERE user_id = ANY ($1)`
	if err := repo.db.SelectContext(ctx, &titles, query, pq.StringArray(userIDs)); err != nil {
		return nil, errors.Wrap(err, "getting grade titles by users")
	}
	return titles, nil
}

func (repo gradeRepository) UpdateGrade(ctx context.Context, g grade.Grade) (grade.Grade, error) {
	query := `UPDATE grade SET score = :score WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, query, gradeRow(g))
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "updating grade")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return grade.Grade{}, grade.ErrNotFound
	}
	return g, nil
}

func unpackGrades(rows []gradeRow) []grade.Grade {
	grades := make([]grade.Grade, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, grade.Grade(row))
	}
	return grades
}
