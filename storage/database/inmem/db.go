package inmemdb

import (
	"sync"

	"github.com/edulane/gurukul/core/account"
	"github.com/edulane/gurukul/core/session"
)

// DB is a mutex-guarded in-memory stand-in for the document store, used by
// tests and local development.
type DB struct {
	mutex    sync.RWMutex
	accounts map[string]*account.Account
	tutors   map[string]*account.TutorProfile
	students map[string]*account.StudentProfile
	parents  map[string]*account.ParentProfile
	sessions map[string]*session.Session
}

func Open() *DB {
	return &DB{
		accounts: make(map[string]*account.Account),
		tutors:   make(map[string]*account.TutorProfile),
		students: make(map[string]*account.StudentProfile),
		parents:  make(map[string]*account.ParentProfile),
		sessions: make(map[string]*session.Session),
	}
}
