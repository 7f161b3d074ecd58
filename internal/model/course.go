package model

import (
	"time"

	"github.com/google/uuid"
)

// Lecture is one unit of course curriculum, embedded in its course.
type Lecture struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	VideoURL    string    `json:"video_url"`
	FreePreview bool      `json:"free_preview"`
}

// Course represents a course authored by an instructor.
type Course struct {
	ID             uuid.UUID `json:"id"`
	InstructorID   uuid.UUID `json:"instructor_id"`
	InstructorName string    `json:"instructor_name"`
	Title          string    `json:"title"`
	Subtitle       string    `json:"subtitle,omitempty"`
	Description    string    `json:"description,omitempty"`
	Category       string    `json:"category,omitempty"`
	Level          string    `json:"level,omitempty"`
	Language       string    `json:"language,omitempty"`
	WelcomeMessage string    `json:"welcome_message,omitempty"`
	Pricing        float64   `json:"pricing"`
	Objectives     string    `json:"objectives,omitempty"`
	Lectures       []Lecture `json:"lectures"`
	IsPublished    bool      `json:"is_published"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LectureInput is a curriculum entry in course create/update payloads.
type LectureInput struct {
	Title       string `json:"title" binding:"required,min=1,max=255"`
	VideoURL    string `json:"video_url" binding:"required,url"`
	FreePreview bool   `json:"free_preview"`
}

// CreateCourseRequest is the payload for creating a course.
type CreateCourseRequest struct {
	Title          string         `json:"title" binding:"required,min=3,max=255"`
	Subtitle       string         `json:"subtitle" binding:"omitempty,max=255"`
	Description    string         `json:"description" binding:"omitempty,max=5000"`
	Category       string         `json:"category" binding:"omitempty,max=100"`
	Level          string         `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Language       string         `json:"language" binding:"omitempty,max=50"`
	WelcomeMessage string         `json:"welcome_message" binding:"omitempty,max=2000"`
	Pricing        float64        `json:"pricing" binding:"min=0"`
	Objectives     string         `json:"objectives" binding:"omitempty,max=2000"`
	Lectures       []LectureInput `json:"lectures" binding:"dive"`
	IsPublished    bool           `json:"is_published"`
}

// UpdateCourseRequest is the payload for updating a course. All fields optional.
type UpdateCourseRequest struct {
	Title          string          `json:"title" binding:"omitempty,min=3,max=255"`
	Subtitle       *string         `json:"subtitle" binding:"omitempty,max=255"`
	Description    *string         `json:"description" binding:"omitempty,max=5000"`
	Category       *string         `json:"category" binding:"omitempty,max=100"`
	Level          *string         `json:"level" binding:"omitempty,oneof=beginner intermediate advanced"`
	Language       *string         `json:"language" binding:"omitempty,max=50"`
	WelcomeMessage *string         `json:"welcome_message" binding:"omitempty,max=2000"`
	Pricing        *float64        `json:"pricing" binding:"omitempty,min=0"`
	Objectives     *string         `json:"objectives" binding:"omitempty,max=2000"`
	Lectures       *[]LectureInput `json:"lectures" binding:"omitempty,dive"`
	IsPublished    *bool           `json:"is_published" binding:"omitempty"`
}
