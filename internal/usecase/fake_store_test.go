package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"seminar-ticketing/internal/data/entity"
	"seminar-ticketing/internal/data/repository"
)

// fakeStore is an in-memory stand-in for Postgres. Writes made inside WithTx
// stay private to that transaction until fn returns nil; LockByID blocks while
// another transaction holds the same seminar.
type fakeStore struct {
	mu       sync.Mutex
	nextID   int64
	seminars map[int64]entity.Seminar
	students []entity.Student
	tickets  []entity.Ticket
	payments []entity.Payment
	rowLocks map[int64]chan struct{}

	failTicketCreate error
	failFindEmail    error
	failCommit       error
}

type fakeTx struct {
	held     map[int64]chan struct{}
	seminars map[int64]entity.Seminar
	students []entity.Student
	tickets  []entity.Ticket
}

type fakeTxKey struct{}

func newFakeStore() *fakeStore {
	return &fakeStore{
		seminars: make(map[int64]entity.Seminar),
		rowLocks: make(map[int64]chan struct{}),
	}
}

func (s *fakeStore) repository() *repository.Repository {
	return &repository.Repository{
		Tx:      s,
		Seminar: fakeSeminars{s},
		Student: fakeStudents{s},
		Ticket:  fakeTickets{s},
		Payment: fakePayments{s},
	}
}

func (s *fakeStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) addSeminar(title string, capacity, registered int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.seminars[id] = entity.Seminar{
		Base:            entity.Base{ID: id},
		Title:           title,
		Capacity:        capacity,
		RegisteredCount: registered,
	}
	return id
}

func (s *fakeStore) addStudent(name, email string) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.students = append(s.students, entity.Student{Base: entity.Base{ID: id}, Name: name, Email: email})
	return id
}

func (s *fakeStore) addTicket(seminarID, studentID int64, content string, active bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.id()
	s.tickets = append(s.tickets, entity.Ticket{
		Base:      entity.Base{ID: id},
		SeminarID: seminarID,
		StudentID: studentID,
		QRContent: content,
		Active:    active,
	})
	return id
}

func (s *fakeStore) seminar(id int64) entity.Seminar {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seminars[id]
}

func (s *fakeStore) counts() (students, tickets int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.students), len(s.tickets)
}

func (s *fakeStore) ticketsFor(seminarID int64) []entity.Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Ticket
	for _, t := range s.tickets {
		if t.SeminarID == seminarID {
			out = append(out, t)
		}
	}
	return out
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(fakeTxKey{}).(*fakeTx); ok {
		return fn(ctx)
	}

	tx := &fakeTx{
		held:     make(map[int64]chan struct{}),
		seminars: make(map[int64]entity.Seminar),
	}
	defer func() {
		for _, ch := range tx.held {
			<-ch
		}
	}()

	if err := fn(context.WithValue(ctx, fakeTxKey{}, tx)); err != nil {
		return err
	}
	if s.failCommit != nil {
		return fmt.Errorf("%w: %w", repository.ErrCommitFailed, s.failCommit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sem := range tx.seminars {
		s.seminars[id] = sem
	}
	s.students = append(s.students, tx.students...)
	s.tickets = append(s.tickets, tx.tickets...)
	return nil
}

func txOf(ctx context.Context) *fakeTx {
	tx, _ := ctx.Value(fakeTxKey{}).(*fakeTx)
	return tx
}

// caller holds s.mu
func (s *fakeStore) seminarView(tx *fakeTx, id int64) (entity.Seminar, bool) {
	if tx != nil {
		if sem, ok := tx.seminars[id]; ok {
			return sem, true
		}
	}
	sem, ok := s.seminars[id]
	return sem, ok
}

// caller holds s.mu
func (s *fakeStore) studentExists(tx *fakeTx, id int64) bool {
	for _, st := range s.students {
		if st.ID == id {
			return true
		}
	}
	if tx != nil {
		for _, st := range tx.students {
			if st.ID == id {
				return true
			}
		}
	}
	return false
}

type fakeSeminars struct{ s *fakeStore }

func (f fakeSeminars) Create(ctx context.Context, seminar *entity.Seminar) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	seminar.ID = f.s.id()
	f.s.seminars[seminar.ID] = *seminar
	return nil
}

func (f fakeSeminars) FindByID(ctx context.Context, id int64) (*entity.Seminar, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	sem, ok := f.s.seminarView(txOf(ctx), id)
	if !ok {
		return nil, nil
	}
	return &sem, nil
}

func (f fakeSeminars) FindAll(ctx context.Context, limit, offset int) ([]*entity.Seminar, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	ids := make([]int64, 0, len(f.s.seminars))
	for id := range f.s.seminars {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []*entity.Seminar
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		sem := f.s.seminars[ids[i]]
		out = append(out, &sem)
	}
	return out, nil
}

func (f fakeSeminars) CountAll(ctx context.Context) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return int64(len(f.s.seminars)), nil
}

func (f fakeSeminars) LockByID(ctx context.Context, id int64) (*entity.Seminar, error) {
	tx := txOf(ctx)
	if tx == nil {
		return nil, errors.New("lock seminar outside transaction")
	}

	if _, held := tx.held[id]; !held {
		f.s.mu.Lock()
		ch, ok := f.s.rowLocks[id]
		if !ok {
			ch = make(chan struct{}, 1)
			f.s.rowLocks[id] = ch
		}
		f.s.mu.Unlock()

		select {
		case ch <- struct{}{}:
			tx.held[id] = ch
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return f.FindByID(ctx, id)
}

func (f fakeSeminars) IncrementRegistered(ctx context.Context, id int64) (int, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	tx := txOf(ctx)
	sem, ok := f.s.seminarView(tx, id)
	if !ok || sem.RegisteredCount >= sem.Capacity {
		return 0, repository.ErrCapacityExceeded
	}
	sem.RegisteredCount++
	if tx != nil {
		tx.seminars[id] = sem
	} else {
		f.s.seminars[id] = sem
	}
	return sem.RegisteredCount, nil
}

type fakeStudents struct{ s *fakeStore }

func (f fakeStudents) Create(ctx context.Context, student *entity.Student) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	student.ID = f.s.id()
	if tx := txOf(ctx); tx != nil {
		tx.students = append(tx.students, *student)
	} else {
		f.s.students = append(f.s.students, *student)
	}
	return nil
}

func (f fakeStudents) FindByID(ctx context.Context, id int64) (*entity.Student, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	all := append([]entity.Student{}, f.s.students...)
	if tx := txOf(ctx); tx != nil {
		all = append(all, tx.students...)
	}
	for _, st := range all {
		if st.ID == id {
			return &st, nil
		}
	}
	return nil, nil
}

func (f fakeStudents) FindByEmail(ctx context.Context, email string) (*entity.Student, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failFindEmail != nil {
		return nil, f.s.failFindEmail
	}
	all := append([]entity.Student{}, f.s.students...)
	if tx := txOf(ctx); tx != nil {
		all = append(all, tx.students...)
	}

	var found *entity.Student
	for i := range all {
		if all[i].Email == email && (found == nil || all[i].ID < found.ID) {
			found = &all[i]
		}
	}
	return found, nil
}

type fakeTickets struct{ s *fakeStore }

func (f fakeTickets) Create(ctx context.Context, ticket *entity.Ticket) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.failTicketCreate != nil {
		return f.s.failTicketCreate
	}
	tx := txOf(ctx)
	if _, ok := f.s.seminarView(tx, ticket.SeminarID); !ok || !f.s.studentExists(tx, ticket.StudentID) {
		return repository.ErrReferenceMissing
	}
	ticket.ID = f.s.id()
	if tx != nil {
		tx.tickets = append(tx.tickets, *ticket)
	} else {
		f.s.tickets = append(f.s.tickets, *ticket)
	}
	return nil
}

func (f fakeTickets) all(ctx context.Context) []entity.Ticket {
	all := append([]entity.Ticket{}, f.s.tickets...)
	if tx := txOf(ctx); tx != nil {
		all = append(all, tx.tickets...)
	}
	return all
}

func (f fakeTickets) FindByID(ctx context.Context, id int64) (*entity.Ticket, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, t := range f.all(ctx) {
		if t.ID == id {
			return &t, nil
		}
	}
	return nil, nil
}

func (f fakeTickets) FindByQRContent(ctx context.Context, content string) (*entity.Ticket, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, t := range f.all(ctx) {
		if t.QRContent == content {
			return &t, nil
		}
	}
	return nil, nil
}

func (f fakeTickets) FindByStudentID(ctx context.Context, studentID int64, limit, offset int) ([]*entity.Ticket, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var matched []*entity.Ticket
	for _, t := range f.all(ctx) {
		if t.StudentID == studentID {
			matched = append(matched, &t)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], nil
}

func (f fakeTickets) CountByStudentID(ctx context.Context, studentID int64) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, t := range f.all(ctx) {
		if t.StudentID == studentID {
			n++
		}
	}
	return n, nil
}

func (f fakeTickets) CountBySeminarID(ctx context.Context, seminarID int64) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for _, t := range f.all(ctx) {
		if t.SeminarID == seminarID {
			n++
		}
	}
	return n, nil
}

type fakePayments struct{ s *fakeStore }

func (f fakePayments) Create(ctx context.Context, payment *entity.Payment) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	found := false
	for _, t := range f.s.tickets {
		if t.ID == payment.TicketID {
			found = true
			break
		}
	}
	if !found {
		return repository.ErrReferenceMissing
	}
	payment.ID = f.s.id()
	f.s.payments = append(f.s.payments, *payment)
	return nil
}

func (f fakePayments) FindByID(ctx context.Context, id int64) (*entity.Payment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, p := range f.s.payments {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, nil
}

func (f fakePayments) FindByTicketID(ctx context.Context, ticketID int64) ([]*entity.Payment, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*entity.Payment
	for _, p := range f.s.payments {
		if p.TicketID == ticketID {
			out = append(out, &p)
		}
	}
	return out, nil
}

// fakeRenderer records rendered images instead of touching disk.
type fakeRenderer struct {
	mu       sync.Mutex
	err      error
	rendered map[string]string
	removed  []string
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{rendered: make(map[string]string)}
}

func (r *fakeRenderer) Render(content, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.rendered[path] = content
	return nil
}

func (r *fakeRenderer) Remove(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rendered, path)
	r.removed = append(r.removed, path)
	return nil
}

func (r *fakeRenderer) files() map[string]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]string, len(r.rendered))
	for k, v := range r.rendered {
		out[k] = v
	}
	return out
}
