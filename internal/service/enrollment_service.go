package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Freeeeeet/tutor_market/internal/model"
	"github.com/Freeeeeet/tutor_market/internal/repository"
	"go.uber.org/zap"
)

type EnrollmentService struct {
	courseRepo     CourseStore
	enrollmentRepo EnrollmentStore
	logger         *zap.Logger
}

func NewEnrollmentService(courseRepo CourseStore, enrollmentRepo EnrollmentStore, logger *zap.Logger) *EnrollmentService {
	return &EnrollmentService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		logger:         logger,
	}
}

// EnrollBySlug записывает студента на активный курс. Повторный вызов возвращает существующую запись.
func (s *EnrollmentService) EnrollBySlug(ctx context.Context, studentID int64, slug string) (*model.Enrollment, bool, error) {
	course, err := s.courseRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, false, fmt.Errorf("get course: %w", err)
	}
	if course == nil || !course.IsActive {
		return nil, false, ErrCourseNotFound
	}
	return s.enroll(ctx, studentID, course)
}

// Enroll записывает студента на курс по ID
func (s *EnrollmentService) Enroll(ctx context.Context, studentID, courseID int64) (*model.Enrollment, bool, error) {
	course, err := s.courseRepo.GetByID(ctx, courseID)
	if err != nil {
		return nil, false, fmt.Errorf("get course: %w", err)
	}
	if course == nil {
		return nil, false, ErrCourseNotFound
	}
	return s.enroll(ctx, studentID, course)
}

func (s *EnrollmentService) enroll(ctx context.Context, studentID int64, course *model.Course) (*model.Enrollment, bool, error) {
	enrollment, created, err := s.enrollmentRepo.GetOrCreate(ctx, studentID, course.ID)
	if err != nil {
		return nil, false, fmt.Errorf("create enrollment: %w", err)
	}

	if created {
		s.logger.Info("Student enrolled",
			zap.Int64("student_id", studentID),
			zap.Int64("course_id", course.ID),
			zap.Int64("enrollment_id", enrollment.ID))
	}

	return enrollment, created, nil
}

// ForStudent returns an enrollment owned by the student
func (s *EnrollmentService) ForStudent(ctx context.Context, studentID, enrollmentID int64) (*model.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.GetByID(ctx, enrollmentID)
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	if enrollment == nil || enrollment.StudentID != studentID {
		return nil, ErrEnrollmentNotFound
	}
	return enrollment, nil
}

func (s *EnrollmentService) ListForStudent(ctx context.Context, studentID int64) ([]*model.Enrollment, error) {
	enrollments, err := s.enrollmentRepo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// Unenroll удаляет запись студента
func (s *EnrollmentService) Unenroll(ctx context.Context, studentID, enrollmentID int64) error {
	if err := s.enrollmentRepo.DeleteForStudent(ctx, enrollmentID, studentID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrEnrollmentNotFound
		}
		return fmt.Errorf("delete enrollment: %w", err)
	}

	s.logger.Info("Enrollment deleted",
		zap.Int64("student_id", studentID),
		zap.Int64("enrollment_id", enrollmentID))
	return nil
}
