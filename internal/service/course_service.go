package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/learnora/learnora-backend/internal/model"
	"github.com/learnora/learnora-backend/internal/repository"
)

// CourseService handles instructor course authoring and the student
// catalog.
type CourseService struct {
	courses *repository.CourseRepository
}

// NewCourseService creates a new CourseService.
func NewCourseService(courses *repository.CourseRepository) *CourseService {
	return &CourseService{courses: courses}
}

// Create inserts a new course owned by the instructor.
func (s *CourseService) Create(ctx context.Context, instructor Principal, req *model.CreateCourseRequest) (*model.Course, error) {
	course := &model.Course{
		InstructorID:   instructor.ID,
		InstructorName: instructor.Name,
		Title:          req.Title,
		Subtitle:       req.Subtitle,
		Description:    req.Description,
		Category:       req.Category,
		Level:          req.Level,
		Language:       req.Language,
		WelcomeMessage: req.WelcomeMessage,
		Pricing:        req.Pricing,
		Objectives:     req.Objectives,
		Lectures:       buildLectures(req.Lectures),
		IsPublished:    req.IsPublished,
	}
	if err := s.courses.Create(ctx, course); err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return course, nil
}

// Update mutates a course owned by the instructor. Replacing the lecture
// list assigns fresh lecture IDs, which orphans existing lesson quizzes and
// watch progress referencing the old ones; callers replace curriculum
// wholesale and are expected to rebuild quizzes afterwards.
func (s *CourseService) Update(ctx context.Context, instructorID, courseID uuid.UUID, req *model.UpdateCourseRequest) (*model.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	if course.InstructorID != instructorID {
		return nil, ErrAccessDenied
	}

	if req.Title != "" {
		course.Title = req.Title
	}
	if req.Subtitle != nil {
		course.Subtitle = *req.Subtitle
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Category != nil {
		course.Category = *req.Category
	}
	if req.Level != nil {
		course.Level = *req.Level
	}
	if req.Language != nil {
		course.Language = *req.Language
	}
	if req.WelcomeMessage != nil {
		course.WelcomeMessage = *req.WelcomeMessage
	}
	if req.Pricing != nil {
		course.Pricing = *req.Pricing
	}
	if req.Objectives != nil {
		course.Objectives = *req.Objectives
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}
	if req.Lectures != nil {
		course.Lectures = buildLectures(*req.Lectures)
	}

	rows, err := s.courses.Update(ctx, course)
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return course, nil
}

// Get retrieves a course by ID.
func (s *CourseService) Get(ctx context.Context, courseID uuid.UUID) (*model.Course, error) {
	course, err := s.courses.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get course: %w", err)
	}
	return course, nil
}

// ListByInstructor retrieves the instructor's own courses.
func (s *CourseService) ListByInstructor(ctx context.Context, instructorID uuid.UUID) ([]model.Course, error) {
	courses, err := s.courses.ListByInstructor(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListPublished retrieves the public catalog page.
func (s *CourseService) ListPublished(ctx context.Context, page, perPage int) ([]model.Course, int64, error) {
	courses, total, err := s.courses.ListPublished(ctx, page, perPage)
	if err != nil {
		return nil, 0, fmt.Errorf("list published courses: %w", err)
	}
	return courses, total, nil
}

func buildLectures(inputs []model.LectureInput) []model.Lecture {
	lectures := make([]model.Lecture, len(inputs))
	for i, in := range inputs {
		lectures[i] = model.Lecture{
			ID:          uuid.New(),
			Title:       in.Title,
			VideoURL:    in.VideoURL,
			FreePreview: in.FreePreview,
		}
	}
	return lectures
}
