// Package memory is an in-process implementation of the repository
// contracts. Transactions are serialized by a single lock and rolled back
// by restoring a snapshot, and the same unique constraints as the SQL
// schema are enforced.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"orggov-backend/internal/domain"
	"orggov-backend/internal/repository"
)

type data struct {
	seq           map[string]int32
	colleges      map[int32]domain.College
	courses       map[int32]domain.Course
	terms         map[int32]domain.AcademicTerm
	accounts      map[int32]domain.Account
	applications  map[int32]domain.Application
	organizations map[int32]domain.Organization
	councils      map[int32]domain.Council
	officers      map[int32]domain.StudentOfficial
	proposals     map[int32]domain.EventProposal
	documents     map[int32]domain.EventDocument
	submissions   map[string]domain.PendingSubmission
	logs          []domain.NotificationLog
}

func newData() *data {
	return &data{
		seq:           map[string]int32{},
		colleges:      map[int32]domain.College{},
		courses:       map[int32]domain.Course{},
		terms:         map[int32]domain.AcademicTerm{},
		accounts:      map[int32]domain.Account{},
		applications:  map[int32]domain.Application{},
		organizations: map[int32]domain.Organization{},
		councils:      map[int32]domain.Council{},
		officers:      map[int32]domain.StudentOfficial{},
		proposals:     map[int32]domain.EventProposal{},
		documents:     map[int32]domain.EventDocument{},
		submissions:   map[string]domain.PendingSubmission{},
	}
}

func (d *data) clone() *data {
	c := &data{
		seq:           cloneMap(d.seq),
		colleges:      cloneMap(d.colleges),
		courses:       cloneMap(d.courses),
		terms:         cloneMap(d.terms),
		accounts:      cloneMap(d.accounts),
		applications:  cloneMap(d.applications),
		organizations: cloneMap(d.organizations),
		councils:      cloneMap(d.councils),
		officers:      cloneMap(d.officers),
		proposals:     cloneMap(d.proposals),
		documents:     cloneMap(d.documents),
		submissions:   cloneMap(d.submissions),
	}
	c.logs = append([]domain.NotificationLog(nil), d.logs...)
	return c
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (d *data) next(table string) int32 {
	d.seq[table]++
	return d.seq[table]
}

// sortedKeys returns the ids of m in ascending order.
func sortedKeys[V any](m map[int32]V) []int32 {
	keys := make([]int32, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type Store struct {
	mu    sync.Mutex
	data  *data
	repos *repository.Repositories
}

func NewStore() *Store {
	s := &Store{data: newData()}
	s.repos = newRepositories(&view{store: s})
	return s
}

func (s *Store) Repos() *repository.Repositories {
	return s.repos
}

// WithinTx holds the store lock for the whole of fn. Repositories handed to
// fn must not be used after it returns, and fn must not call Repos().
func (s *Store) WithinTx(ctx context.Context, fn repository.TxFunc) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	defer func() {
		if p := recover(); p != nil {
			s.data = snapshot
			panic(p)
		}
		if err != nil {
			s.data = snapshot
		}
	}()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, newRepositories(&view{store: s, inTx: true}))
}

// view gives repositories access to the data, taking the lock unless the
// caller already holds it through WithinTx.
type view struct {
	store *Store
	inTx  bool
}

func (v *view) read(fn func(d *data) error) error {
	if !v.inTx {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
	}
	return fn(v.store.data)
}

// write runs fn against a copy when outside a transaction so a failing
// statement leaves no trace.
func (v *view) write(fn func(d *data) error) error {
	if v.inTx {
		return fn(v.store.data)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	work := v.store.data.clone()
	if err := fn(work); err != nil {
		return err
	}
	v.store.data = work
	return nil
}

func newRepositories(v *view) *repository.Repositories {
	return &repository.Repositories{
		Applications:     &applicationRepository{v},
		Accounts:         &accountRepository{v},
		Colleges:         &collegeRepository{v},
		Courses:          &courseRepository{v},
		Organizations:    &organizationRepository{v},
		Councils:         &councilRepository{v},
		Terms:            &termRepository{v},
		Officers:         &officerRepository{v},
		Proposals:        &proposalRepository{v},
		Documents:        &documentRepository{v},
		Submissions:      &submissionRepository{v},
		NotificationLogs: &notificationLogRepository{v},
	}
}

func notFound(what string, id interface{}) error {
	return domain.NotFoundError("%s %v not found", what, id)
}

func conflict(msg string) error {
	return domain.ConflictError("%s", msg)
}

// AddCollege, AddCourse, AddTerm and AddAccount seed reference data.

func (s *Store) AddCollege(c domain.College) domain.College {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.data.next("colleges")
	}
	s.data.colleges[c.ID] = c
	return c
}

func (s *Store) AddCourse(c domain.Course) domain.Course {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.data.next("courses")
	}
	s.data.courses[c.ID] = c
	return c
}

func (s *Store) AddTerm(t domain.AcademicTerm) (domain.AcademicTerm, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.IsActive {
		for _, existing := range s.data.terms {
			if existing.IsActive {
				return t, fmt.Errorf("term %s is already active", existing.Label())
			}
		}
	}
	if t.ID == 0 {
		t.ID = s.data.next("terms")
	}
	s.data.terms[t.ID] = t
	return t, nil
}

func (s *Store) AddAccount(ctx context.Context, a *domain.Account) error {
	return s.repos.Accounts.Create(ctx, a)
}

// Counters for assertions in tests.

func (s *Store) CountCouncils(collegeID int32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.data.councils {
		if c.CollegeID == collegeID {
			n++
		}
	}
	return n
}

func (s *Store) CountAccounts() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.accounts)
}
