// Package servicetest provides in-memory stores and outbound fakes for tests.
package servicetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/payment"
	"github.com/Freeeeeet/tutor_market/internal/repository"
)

// DB is an in-memory stand-in for the postgres repositories
type DB struct {
	mu          sync.Mutex
	nextID      int64
	users       map[int64]*model.User
	tutors      map[int64]*model.Tutor
	courses     map[int64]*model.Course
	sessions    map[int64]*model.Session
	resources   map[int64]*model.Resource
	enrollments map[int64]*model.Enrollment
	bookings    map[int64]*model.Booking
	requests    map[int64]*model.ActionRequest
	payments    map[int64]*model.Payment
	setting     *model.SiteSetting
}

func NewDB() *DB {
	return &DB{
		users:       map[int64]*model.User{},
		tutors:      map[int64]*model.Tutor{},
		courses:     map[int64]*model.Course{},
		sessions:    map[int64]*model.Session{},
		resources:   map[int64]*model.Resource{},
		enrollments: map[int64]*model.Enrollment{},
		bookings:    map[int64]*model.Booking{},
		requests:    map[int64]*model.ActionRequest{},
		payments:    map[int64]*model.Payment{},
	}
}

// Store views over the same data

func (db *DB) Users() Users             { return Users{db} }
func (db *DB) Tutors() Tutors           { return Tutors{db} }
func (db *DB) Courses() Courses         { return Courses{db} }
func (db *DB) Sessions() Sessions       { return Sessions{db} }
func (db *DB) Resources() Resources     { return Resources{db} }
func (db *DB) Enrollments() Enrollments { return Enrollments{db} }
func (db *DB) Bookings() Bookings       { return Bookings{db} }
func (db *DB) Requests() Requests       { return Requests{db} }
func (db *DB) Payments() Payments       { return Payments{db} }
func (db *DB) Settings() Settings       { return Settings{db} }

// SetActiveSetting replaces the active site settings row
func (db *DB) SetActiveSetting(s *model.SiteSetting) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.setting = s
}

func (db *DB) id() int64 {
	db.nextID++
	return db.nextID
}

// Seed helpers

// AddResource attaches a link resource to a course
func (db *DB) AddResource(courseID int64, title, url string) *model.Resource {
	db.mu.Lock()
	defer db.mu.Unlock()
	r := &model.Resource{ID: db.id(), CourseID: courseID, Title: title, URL: url}
	db.resources[r.ID] = r
	return r
}

func (db *DB) AddUser(username string, staff bool) *model.User {
	db.mu.Lock()
	defer db.mu.Unlock()
	u := &model.User{ID: db.id(), Username: username, IsStaff: staff, CreatedAt: time.Now()}
	db.users[u.ID] = u
	return u
}

func (db *DB) AddCourse(title, slug string, price int, active bool) *model.Course {
	db.mu.Lock()
	defer db.mu.Unlock()
	tu := &model.User{ID: db.id(), Username: "tutor_" + slug}
	db.users[tu.ID] = tu
	t := &model.Tutor{ID: db.id(), UserID: tu.ID, User: tu}
	db.tutors[t.ID] = t
	c := &model.Course{ID: db.id(), Title: title, Slug: slug, TutorID: t.ID, PriceCents: price, IsActive: active, Tutor: t}
	db.courses[c.ID] = c
	return c
}

func (db *DB) AddSession(courseID int64, capacity int, start time.Time) *model.Session {
	db.mu.Lock()
	defer db.mu.Unlock()
	s := &model.Session{ID: db.id(), CourseID: courseID, StartTime: start, EndTime: start.Add(time.Hour), Capacity: capacity, Course: db.courses[courseID]}
	db.sessions[s.ID] = s
	return s
}

func (db *DB) bookedCount(sessionID int64) int {
	n := 0
	for _, b := range db.bookings {
		if b.SessionID == sessionID {
			n++
		}
	}
	return n
}

func (db *DB) BookingCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.bookings)
}

func (db *DB) PaymentCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.payments)
}

// users

type Users struct{ db *DB }

func (f Users) Create(_ context.Context, user *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	user.ID = f.db.id()
	user.CreatedAt = time.Now()
	cp := *user
	f.db.users[user.ID] = &cp
	return nil
}

func (f Users) GetByID(_ context.Context, id int64) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f Users) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, u := range f.db.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f Users) UpdateProfile(_ context.Context, user *model.User) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	u, ok := f.db.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	u.FirstName, u.LastName, u.Email, u.Bio, u.Phone = user.FirstName, user.LastName, user.Email, user.Bio, user.Phone
	return nil
}

func (f Users) CountAll(context.Context) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.users), nil
}

// tutors

type Tutors struct{ db *DB }

func (f Tutors) List(context.Context) ([]*model.Tutor, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Tutor
	for _, t := range f.db.tutors {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f Tutors) GetByID(_ context.Context, id int64) (*model.Tutor, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.tutors[id], nil
}

func (f Tutors) CountAll(context.Context) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.tutors), nil
}

// courses

type Courses struct{ db *DB }

func (f Courses) sorted(activeOnly bool) []*model.Course {
	var out []*model.Course
	for _, c := range f.db.courses {
		if activeOnly && !c.IsActive {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f Courses) ListActive(_ context.Context, limit int) ([]*model.Course, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := f.sorted(true)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f Courses) List(context.Context) ([]*model.Course, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.sorted(false), nil
}

func (f Courses) GetByID(_ context.Context, id int64) (*model.Course, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	c, ok := f.db.courses[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (f Courses) GetBySlug(_ context.Context, slug string) (*model.Course, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, c := range f.db.courses {
		if c.Slug == slug {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (f Courses) slugTaken(slug string, except int64) bool {
	for _, c := range f.db.courses {
		if c.Slug == slug && c.ID != except {
			return true
		}
	}
	return false
}

func (f Courses) Create(_ context.Context, course *model.Course) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if f.slugTaken(course.Slug, 0) {
		return repository.ErrDuplicate
	}
	course.ID = f.db.id()
	course.CreatedAt = time.Now()
	cp := *course
	f.db.courses[course.ID] = &cp
	return nil
}

func (f Courses) Update(_ context.Context, course *model.Course) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.courses[course.ID]; !ok {
		return repository.ErrNotFound
	}
	if f.slugTaken(course.Slug, course.ID) {
		return repository.ErrDuplicate
	}
	cp := *course
	f.db.courses[course.ID] = &cp
	return nil
}

func (f Courses) Delete(_ context.Context, id int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	if _, ok := f.db.courses[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.db.courses, id)
	return nil
}

func (f Courses) SlugExists(_ context.Context, slug string) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.slugTaken(slug, 0), nil
}

func (f Courses) CountAll(context.Context) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.courses), nil
}

// sessions

type Sessions struct{ db *DB }

func (f Sessions) withCount(s *model.Session) *model.Session {
	cp := *s
	cp.BookedCount = f.db.bookedCount(s.ID)
	return &cp
}

func (f Sessions) GetByID(_ context.Context, id int64) (*model.Session, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.sessions[id]
	if !ok {
		return nil, nil
	}
	return f.withCount(s), nil
}

func (f Sessions) list(filter func(*model.Session) bool, limit int) []*model.Session {
	var out []*model.Session
	for _, s := range f.db.sessions {
		if filter(s) {
			out = append(out, f.withCount(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f Sessions) ListByCourse(_ context.Context, courseID int64) ([]*model.Session, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.list(func(s *model.Session) bool { return s.CourseID == courseID }, 0), nil
}

func (f Sessions) List(_ context.Context, limit int) ([]*model.Session, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.list(func(*model.Session) bool { return true }, limit), nil
}

func (f Sessions) CountAll(context.Context) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.sessions), nil
}

// resources

type Resources struct{ db *DB }

func (f Resources) ListByCourse(_ context.Context, courseID int64) ([]*model.Resource, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Resource
	for _, r := range f.db.resources {
		if r.CourseID == courseID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f Resources) List(context.Context) ([]*model.Resource, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Resource
	for _, r := range f.db.resources {
		out = append(out, r)
	}
	return out, nil
}

func (f Resources) GetByID(_ context.Context, id int64) (*model.Resource, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.resources[id], nil
}

// enrollments

type Enrollments struct{ db *DB }

func (f Enrollments) load(e *model.Enrollment) *model.Enrollment {
	cp := *e
	cp.Course = f.db.courses[e.CourseID]
	cp.Student = f.db.users[e.StudentID]
	return &cp
}

func (f Enrollments) GetOrCreate(_ context.Context, studentID, courseID int64) (*model.Enrollment, bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, e := range f.db.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID {
			return f.load(e), false, nil
		}
	}
	e := &model.Enrollment{ID: f.db.id(), StudentID: studentID, CourseID: courseID, CreatedAt: time.Now()}
	f.db.enrollments[e.ID] = e
	return f.load(e), true, nil
}

func (f Enrollments) GetByID(_ context.Context, id int64) (*model.Enrollment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.enrollments[id]
	if !ok {
		return nil, nil
	}
	return f.load(e), nil
}

func (f Enrollments) ListByStudent(_ context.Context, studentID int64) ([]*model.Enrollment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Enrollment
	for _, e := range f.db.enrollments {
		if e.StudentID == studentID {
			out = append(out, f.load(e))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f Enrollments) ListRecent(_ context.Context, limit int) ([]*model.Enrollment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Enrollment
	for _, e := range f.db.enrollments {
		out = append(out, f.load(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f Enrollments) DeleteForStudent(_ context.Context, id, studentID int64) error {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	e, ok := f.db.enrollments[id]
	if !ok || e.StudentID != studentID {
		return repository.ErrNotFound
	}
	delete(f.db.enrollments, id)
	return nil
}

func (f Enrollments) CountAll(context.Context) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.enrollments), nil
}

// bookings

type Bookings struct{ db *DB }

func (f Bookings) load(b *model.Booking) *model.Booking {
	cp := *b
	if s, ok := f.db.sessions[b.SessionID]; ok {
		sc := *s
		sc.BookedCount = f.db.bookedCount(s.ID)
		cp.Session = &sc
	}
	cp.Student = f.db.users[b.StudentID]
	return &cp
}

// CreateWithinCapacity holds the db lock for the whole check-then-insert
func (f Bookings) CreateWithinCapacity(_ context.Context, studentID, sessionID int64) (*model.Booking, bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	s, ok := f.db.sessions[sessionID]
	if !ok {
		return nil, false, repository.ErrNotFound
	}
	for _, b := range f.db.bookings {
		if b.StudentID == studentID && b.SessionID == sessionID {
			return f.load(b), false, nil
		}
	}
	if f.db.bookedCount(sessionID) >= s.Capacity {
		return nil, false, repository.ErrCapacityReached
	}
	b := &model.Booking{ID: f.db.id(), StudentID: studentID, SessionID: sessionID, CreatedAt: time.Now()}
	f.db.bookings[b.ID] = b
	return f.load(b), true, nil
}

func (f Bookings) GetByID(_ context.Context, id int64) (*model.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	b, ok := f.db.bookings[id]
	if !ok {
		return nil, nil
	}
	return f.load(b), nil
}

func (f Bookings) ListByStudent(_ context.Context, studentID int64) ([]*model.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Booking
	for _, b := range f.db.bookings {
		if b.StudentID == studentID {
			out = append(out, f.load(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f Bookings) ListRecent(_ context.Context, limit int) ([]*model.Booking, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Booking
	for _, b := range f.db.bookings {
		out = append(out, f.load(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f Bookings) CountAll(context.Context) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.bookings), nil
}

// action requests

type Requests struct{ db *DB }

func (f Requests) copyOf(r *model.ActionRequest) *model.ActionRequest {
	cp := *r
	return &cp
}

func (f Requests) GetOrCreatePending(_ context.Context, requestType string, bookingID, requestedBy int64) (*model.ActionRequest, bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, r := range f.db.requests {
		if r.RequestType == requestType && r.BookingID != nil && *r.BookingID == bookingID &&
			r.RequestedBy == requestedBy && r.IsPending() {
			return f.copyOf(r), false, nil
		}
	}
	bid := bookingID
	r := &model.ActionRequest{
		ID:          f.db.id(),
		RequestType: requestType,
		Status:      model.RequestStatusPending,
		BookingID:   &bid,
		RequestedBy: requestedBy,
		CreatedAt:   time.Now(),
	}
	f.db.requests[r.ID] = r
	return f.copyOf(r), true, nil
}

func (f Requests) GetByID(_ context.Context, id int64) (*model.ActionRequest, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.requests[id]
	if !ok {
		return nil, nil
	}
	return f.copyOf(r), nil
}

func (f Requests) list(filter func(*model.ActionRequest) bool, limit int) []*model.ActionRequest {
	var out []*model.ActionRequest
	for _, r := range f.db.requests {
		if filter(r) {
			out = append(out, f.copyOf(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (f Requests) ListByRequester(_ context.Context, requestedBy int64, limit int) ([]*model.ActionRequest, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.list(func(r *model.ActionRequest) bool { return r.RequestedBy == requestedBy }, limit), nil
}

func (f Requests) ListByStatus(_ context.Context, status string, limit int) ([]*model.ActionRequest, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.list(func(r *model.ActionRequest) bool { return status == "" || r.Status == status }, limit), nil
}

func (f Requests) LatestStatusByBooking(_ context.Context, requestedBy int64) (map[int64]string, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	latest := map[int64]*model.ActionRequest{}
	for _, r := range f.db.requests {
		if r.RequestedBy != requestedBy || r.BookingID == nil {
			continue
		}
		if cur, ok := latest[*r.BookingID]; !ok || r.ID > cur.ID {
			latest[*r.BookingID] = r
		}
	}
	out := make(map[int64]string, len(latest))
	for id, r := range latest {
		out[id] = r.Status
	}
	return out, nil
}

func (f Requests) review(id, reviewerID int64, comment string, at time.Time, status string) bool {
	r, ok := f.db.requests[id]
	if !ok || !r.IsPending() {
		return false
	}
	rid := reviewerID
	r.Status = status
	r.ReviewedBy = &rid
	r.ReviewComment = comment
	r.ReviewedAt = &at
	return true
}

func (f Requests) ApproveCancelBooking(_ context.Context, id, reviewerID int64, comment string, at time.Time) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	r, ok := f.db.requests[id]
	if !ok || !r.IsPending() {
		return false, nil
	}
	if r.BookingID != nil {
		delete(f.db.bookings, *r.BookingID)
	}
	return f.review(id, reviewerID, comment, at, model.RequestStatusApproved), nil
}

func (f Requests) Reject(_ context.Context, id, reviewerID int64, comment string, at time.Time) (bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.review(id, reviewerID, comment, at, model.RequestStatusRejected), nil
}

// payments

type Payments struct{ db *DB }

func (f Payments) load(p *model.Payment) *model.Payment {
	cp := *p
	if e, ok := f.db.enrollments[p.EnrollmentID]; ok {
		ec := *e
		ec.Course = f.db.courses[e.CourseID]
		cp.Enrollment = &ec
	}
	return &cp
}

func (f Payments) GetOrCreate(_ context.Context, payment *model.Payment) (*model.Payment, bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, p := range f.db.payments {
		if p.ExternalRef == payment.ExternalRef {
			return f.load(p), false, nil
		}
	}
	p := *payment
	p.ID = f.db.id()
	p.CreatedAt = time.Now()
	f.db.payments[p.ID] = &p
	return f.load(&p), true, nil
}

func (f Payments) GetPaidByEnrollment(_ context.Context, enrollmentID int64) (*model.Payment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	for _, p := range f.db.payments {
		if p.EnrollmentID == enrollmentID && p.Status == model.PaymentStatusPaid {
			return f.load(p), nil
		}
	}
	return nil, nil
}

func (f Payments) GetByID(_ context.Context, id int64) (*model.Payment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	p, ok := f.db.payments[id]
	if !ok {
		return nil, nil
	}
	return f.load(p), nil
}

func (f Payments) ListByStudent(_ context.Context, studentID int64) ([]*model.Payment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Payment
	for _, p := range f.db.payments {
		if e, ok := f.db.enrollments[p.EnrollmentID]; ok && e.StudentID == studentID {
			out = append(out, f.load(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f Payments) ListRecent(_ context.Context, limit int) ([]*model.Payment, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	var out []*model.Payment
	for _, p := range f.db.payments {
		out = append(out, f.load(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f Payments) PaidEnrollmentIDs(_ context.Context, studentID int64) (map[int64]bool, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	out := map[int64]bool{}
	for _, p := range f.db.payments {
		if e, ok := f.db.enrollments[p.EnrollmentID]; ok && e.StudentID == studentID && p.Status == model.PaymentStatusPaid {
			out[p.EnrollmentID] = true
		}
	}
	return out, nil
}

func (f Payments) CountAll(context.Context) (int, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return len(f.db.payments), nil
}

// settings

type Settings struct{ db *DB }

func (f Settings) GetActive(context.Context) (*model.SiteSetting, error) {
	f.db.mu.Lock()
	defer f.db.mu.Unlock()
	return f.db.setting, nil
}

// outbound fakes

type Publisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *Publisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

func (p *Publisher) Keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.keys...)
}

type Notifier struct {
	mu    sync.Mutex
	calls int
	Err   error
}

func (n *Notifier) CancellationRequested(context.Context, *model.ActionRequest, *model.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return n.Err
}

func (n *Notifier) Calls() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}

type Gateway struct {
	Calls    int
	Last     payment.CheckoutRequest
	UsedKeys payment.Keys
	Err      error
}

func (g *Gateway) CreateCheckout(_ context.Context, keys payment.Keys, req payment.CheckoutRequest) (*payment.CheckoutSession, error) {
	g.Calls++
	g.Last = req
	g.UsedKeys = keys
	if g.Err != nil {
		return nil, g.Err
	}
	return &payment.CheckoutSession{ID: "link_test_1", URL: "https://pay.example/link_test_1"}, nil
}
