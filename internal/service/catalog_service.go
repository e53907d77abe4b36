package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
	"go.uber.org/zap"
)

const (
	homeCourseLimit  = 6
	sessionListLimit = 50
)

type CatalogService struct {
	courseRepo   CourseStore
	tutorRepo    TutorStore
	sessionRepo  SessionStore
	resourceRepo ResourceStore
	logger       *zap.Logger
}

func NewCatalogService(
	courseRepo CourseStore,
	tutorRepo TutorStore,
	sessionRepo SessionStore,
	resourceRepo ResourceStore,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		courseRepo:   courseRepo,
		tutorRepo:    tutorRepo,
		sessionRepo:  sessionRepo,
		resourceRepo: resourceRepo,
		logger:       logger,
	}
}

// CourseDetail is a course page with its sessions and materials
type CourseDetail struct {
	Course    *model.Course
	Sessions  []*model.Session
	Resources []*model.Resource
}

// FeaturedCourses returns the courses shown on the home page
func (s *CatalogService) FeaturedCourses(ctx context.Context) ([]*model.Course, error) {
	courses, err := s.courseRepo.ListActive(ctx, homeCourseLimit)
	if err != nil {
		return nil, fmt.Errorf("list featured courses: %w", err)
	}
	return courses, nil
}

// ActiveCourses returns every active course with its tutor
func (s *CatalogService) ActiveCourses(ctx context.Context) ([]*model.Course, error) {
	courses, err := s.courseRepo.ListActive(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list active courses: %w", err)
	}
	return courses, nil
}

// CourseBySlug returns an active course page. Inactive courses are not found.
func (s *CatalogService) CourseBySlug(ctx context.Context, slug string) (*CourseDetail, error) {
	course, err := s.courseRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil || !course.IsActive {
		return nil, ErrCourseNotFound
	}

	sessions, err := s.sessionRepo.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	resources, err := s.resourceRepo.ListByCourse(ctx, course.ID)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}

	return &CourseDetail{Course: course, Sessions: sessions, Resources: resources}, nil
}

func (s *CatalogService) Tutors(ctx context.Context) ([]*model.Tutor, error) {
	tutors, err := s.tutorRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tutors: %w", err)
	}
	return tutors, nil
}

func (s *CatalogService) Tutor(ctx context.Context, id int64) (*model.Tutor, error) {
	tutor, err := s.tutorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get tutor: %w", err)
	}
	if tutor == nil {
		return nil, ErrTutorNotFound
	}
	return tutor, nil
}

// UpcomingSessions returns sessions for the bookings page ordered by start time
func (s *CatalogService) UpcomingSessions(ctx context.Context) ([]*model.Session, error) {
	sessions, err := s.sessionRepo.List(ctx, sessionListLimit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

// Sessions returns every session, used by the API
func (s *CatalogService) Sessions(ctx context.Context) ([]*model.Session, error) {
	sessions, err := s.sessionRepo.List(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}

func (s *CatalogService) Session(ctx context.Context, id int64) (*model.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Courses returns all courses including inactive ones
func (s *CatalogService) Courses(ctx context.Context) ([]*model.Course, error) {
	courses, err := s.courseRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (s *CatalogService) Course(ctx context.Context, id int64) (*model.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, ErrCourseNotFound
	}
	return course, nil
}

func (s *CatalogService) Resources(ctx context.Context) ([]*model.Resource, error) {
	resources, err := s.resourceRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return resources, nil
}

func (s *CatalogService) Resource(ctx context.Context, id int64) (*model.Resource, error) {
	resource, err := s.resourceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get resource: %w", err)
	}
	if resource == nil {
		return nil, ErrResourceNotFound
	}
	return resource, nil
}

// CourseInput is the writable part of a course
type CourseInput struct {
	Title       string
	Slug        string
	Description string
	TutorID     int64
	PriceCents  int
	IsActive    bool
}

func (in CourseInput) validate() error {
	if strings.TrimSpace(in.Title) == "" || len(in.Title) > 200 {
		return fmt.Errorf("%w: title", ErrInvalidPayload)
	}
	if in.PriceCents < 0 {
		return fmt.Errorf("%w: price_cents", ErrInvalidPayload)
	}
	if in.TutorID <= 0 {
		return fmt.Errorf("%w: tutor", ErrInvalidPayload)
	}
	return nil
}

// CreateCourse creates a course. An empty slug is derived from the title.
func (s *CatalogService) CreateCourse(ctx context.Context, in CourseInput) (*model.Course, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if err := s.ensureTutor(ctx, in.TutorID); err != nil {
		return nil, err
	}

	slug := Slugify(in.Slug)
	if slug == "" {
		var err error
		slug, err = s.uniqueSlug(ctx, in.Title)
		if err != nil {
			return nil, err
		}
	}

	course := &model.Course{
		Title:       strings.TrimSpace(in.Title),
		Slug:        slug,
		Description: in.Description,
		TutorID:     in.TutorID,
		PriceCents:  in.PriceCents,
		IsActive:    in.IsActive,
	}
	if err := s.courseRepo.Create(ctx, course); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("create course: %w", err)
	}

	return course, nil
}

func (s *CatalogService) UpdateCourse(ctx context.Context, id int64, in CourseInput) (*model.Course, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	course, err := s.Course(ctx, id)
	if err != nil {
		return nil, err
	}
	if course.TutorID != in.TutorID {
		if err := s.ensureTutor(ctx, in.TutorID); err != nil {
			return nil, err
		}
	}

	course.Title = strings.TrimSpace(in.Title)
	if slug := Slugify(in.Slug); slug != "" {
		course.Slug = slug
	}
	course.Description = in.Description
	course.TutorID = in.TutorID
	course.PriceCents = in.PriceCents
	course.IsActive = in.IsActive

	if err := s.courseRepo.Update(ctx, course); err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrSlugTaken
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("update course: %w", err)
	}

	return course, nil
}

func (s *CatalogService) DeleteCourse(ctx context.Context, id int64) error {
	if err := s.courseRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrCourseNotFound
		}
		return fmt.Errorf("delete course: %w", err)
	}
	s.logger.Info("Course deleted", zap.Int64("course_id", id))
	return nil
}

func (s *CatalogService) ensureTutor(ctx context.Context, tutorID int64) error {
	tutor, err := s.tutorRepo.GetByID(ctx, tutorID)
	if err != nil {
		return fmt.Errorf("get tutor: %w", err)
	}
	if tutor == nil {
		return ErrTutorNotFound
	}
	return nil
}

// uniqueSlug slugifies the title and appends -2, -3... until the slug is free
func (s *CatalogService) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "course"
	}

	slug := base
	for i := 2; ; i++ {
		exists, err := s.courseRepo.SlugExists(ctx, slug)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
}
