// Package dummydb provides in-memory repository implementations, used by
// tests and quick local runs that do not need postgres.
package dummydb

import (
	"sync"

	"github.com/darasahq/darasa/core/grade"
	"github.com/darasahq/darasa/core/post"
	"github.com/darasahq/darasa/core/user"
)

type (
	DB struct {
		user  *userTable
		post  *postTable
		grade *gradeTable
	}

	userTable struct {
		sync.RWMutex
		table map[string]*user.User
	}

	postTable struct {
		sync.RWMutex
		table map[string]*post.Post
	}

	gradeTable struct {
		sync.RWMutex
		table map[string]*grade.Grade
	}
)

func Open() *DB {
	return &DB{
		user:  &userTable{table: make(map[string]*user.User)},
		post:  &postTable{table: make(map[string]*post.Post)},
		grade: &gradeTable{table: make(map[string]*grade.Grade)},
	}
}
