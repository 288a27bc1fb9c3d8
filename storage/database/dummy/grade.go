package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/darasahq/darasa/core/grade"
)

type gradeRepository struct {
	db *gradeTable
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) grade.Repository {
	return &gradeRepository{db: db.grade}
}

func (repo *gradeRepository) CreateGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	g.ID = uuid.New().String()
	repo.db.table[g.ID] = &g
	return g, nil
}

func (repo *gradeRepository) GetGradesByUser(_ context.Context, userID string) ([]grade.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var grades []grade.Grade
	for _, g := range repo.db.table {
		if g.UserID == userID {
			grades = append(grades, *g)
		}
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].Title < grades[j].Title })
	return grades, nil
}

func (repo *gradeRepository) GetGradesByTitle(_ context.Context, title string) ([]grade.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var grades []grade.Grade
	for _, g := range repo.db.table {
		if g.Title == title {
			grades = append(grades, *g)
		}
	}
	return grades, nil
}

func (repo *gradeRepository) GetGradeByUserAndTitle(_ context.Context, userID, title string) (grade.Grade, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, g := range repo.db.table {
		if g.UserID == userID && g.Title == title {
			return *g, nil
		}
	}
	return grade.Grade{}, grade.ErrNotFound
}

func (repo *gradeRepository) GetGradeTitlesByUserIDs(_ context.Context, userIDs []string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	ids := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		ids[id] = struct{}{}
	}
	seen := make(map[string]struct{})
	var titles []string
	for _, g := range repo.db.table {
		if _, ok := ids[g.UserID]; !ok {
			continue
		}
		if _, ok := seen[g.Title]; ok {
			continue
		}
		seen[g.Title] = struct{}{}
		titles = append(titles, g.Title)
	}
	return titles, nil
}

func (repo *gradeRepository) UpdateGrade(_ context.Context, g grade.Grade) (grade.Grade, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.table[g.ID]
	if !ok {
		return grade.Grade{}, grade.ErrNotFound
	}
	orig.Score = g.Score
	return *orig, nil
}
