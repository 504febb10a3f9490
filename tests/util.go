package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/formazione/core"
	"github.com/trezcool/formazione/core/schedule"
	"github.com/trezcool/formazione/storage/database/inmem"
)

// Directory is the catalog most tests run against:
//   - C1 needs BLSD and PS, C2 needs nothing
//   - t1 and t3 can teach C1, t2 cannot
//   - emp1 and emp2 work for comp1, emp3 for comp2; each uses a different company field
func Directory() inmemdb.Directory {
	return inmemdb.Directory{
		Courses: []schedule.Course{
			{ID: "C1", Title: "Primo soccorso", Code: "PS-01", Duration: 8, Certifications: schedule.ParseCertifications("BLSD, PS")},
			{ID: "C2", Title: "Sicurezza generale", Code: "SG-01", Duration: 4, Certifications: schedule.CertificationList{}},
		},
		Trainers: []schedule.Trainer{
			{ID: "t1", FirstName: "Giulia", LastName: "Verdi", Email: "giulia@test.test", Certifications: schedule.ParseCertifications("BLSD", "PS")},
			{ID: "t2", FirstName: "Paolo", LastName: "Neri", Email: "paolo@test.test", Certifications: schedule.ParseCertifications("ps")},
			{ID: "t3", FirstName: "Sara", LastName: "Galli", Email: "sara@test.test", Certifications: schedule.ParseCertifications("blsd, PS, Antincendio")},
		},
		Companies: []schedule.Company{
			{ID: "comp1", Name: "Acme S.p.A."},
			{ID: "comp2", Name: "Beta S.r.l."},
		},
		Employees: []schedule.Employee{
			{ID: "emp1", FirstName: "Mario", LastName: "Rossi", Email: "mario.rossi@acme.test", Position: "Magazziniere", CompanyID: "comp1"},
			{ID: "emp2", FirstName: "Luca", LastName: "Bruno", Email: "luca.bruno@acme.test", Position: "Impiegato", CompanyIDSnake: "comp1"},
			{ID: "emp3", FirstName: "Anna", LastName: "Bianchi", Email: "anna@beta.test", Position: "Responsabile", Company: &schedule.CompanyLink{ID: "comp2"}},
		},
	}
}

// SeededDB opens an in-memory db holding Directory().
func SeededDB() *inmemdb.DB {
	db := inmemdb.Open()
	db.Seed(Directory())
	return db
}

// CreateSchedule stores sch as is, stamping it with createdAt (now by default).
func CreateSchedule(t *testing.T, repo schedule.Repository, sch schedule.Schedule, createdAt ...time.Time) schedule.Schedule {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	sch.CreatedAt = tstamp
	sch.UpdatedAt = tstamp
	if sch.Status == "" {
		sch.Status = schedule.DefaultStatus
	}
	sch, err := repo.CreateSchedule(context.Background(), sch)
	if err != nil {
		t.Fatalf("createSchedule() failed: %v", err)
	}
	return sch
}

type LogEntry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// Logger records every entry instead of printing it.
type Logger struct {
	mu      sync.Mutex
	entries []LogEntry
}

var _ core.Logger = (*Logger)(nil)

func NewLogger() *Logger { return &Logger{} }

func (l *Logger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{Level: level, Msg: msg, Args: args})
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warning", msg, args) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("critical", msg, args) }

// Entries returns the recorded entries of level, or all of them when level is empty.
func (l *Logger) Entries(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, 0, len(l.entries))
	for _, e := range l.entries {
		if level == "" || e.Level == level {
			out = append(out, e)
		}
	}
	return out
}

func (l *Logger) String() string {
	return fmt.Sprintf("%v", l.Entries(""))
}
