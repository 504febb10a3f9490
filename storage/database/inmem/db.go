package inmemdb

import (
	"sync"

	"github.com/trezcool/formazione/core/schedule"
)

type (
	DB struct {
		mutex     sync.RWMutex
		schedules map[schedule.ID]*schedule.Schedule
		courses   []schedule.Course
		trainers  []schedule.Trainer
		companies []schedule.Company
		employees []schedule.Employee
	}

	// Directory is the catalog a DB is seeded with.
	Directory struct {
		Courses   []schedule.Course
		Trainers  []schedule.Trainer
		Companies []schedule.Company
		Employees []schedule.Employee
	}
)

func Open() *DB {
	return &DB{schedules: make(map[schedule.ID]*schedule.Schedule)}
}

// Seed replaces the catalog.
func (db *DB) Seed(dir Directory) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.courses = append([]schedule.Course(nil), dir.Courses...)
	db.trainers = append([]schedule.Trainer(nil), dir.Trainers...)
	db.companies = append([]schedule.Company(nil), dir.Companies...)
	db.employees = append([]schedule.Employee(nil), dir.Employees...)
}
