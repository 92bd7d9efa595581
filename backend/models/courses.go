package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Difficulty string

const (
	DifficultyBeginner     Difficulty = "Beginner"
	DifficultyIntermediate Difficulty = "Intermediate"
	DifficultyAdvanced     Difficulty = "Advanced"
)

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

type Course struct {
	ID            string                      `gorm:"primaryKey" json:"id"`
	Title         string                      `json:"title"`
	Description   string                      `json:"description"`
	Audience      string                      `json:"audience"`
	Difficulty    Difficulty                  `json:"difficulty"`
	Duration      string                      `json:"duration"` // free-text, e.g. "12 hours"
	Tags          datatypes.JSONSlice[string] `json:"tags"`
	Prerequisites datatypes.JSONSlice[string] `json:"prerequisites"`
	SkillsGained  datatypes.JSONSlice[string] `json:"skills_gained"`
	CoverImage    string                      `json:"cover_image,omitempty"` // base64
	CreatedAt     time.Time                   `json:"created_at"`
	Modules       []Module                    `gorm:"constraint:OnDelete:CASCADE" json:"modules"`
}

type Module struct {
	ID          string   `gorm:"primaryKey" json:"id"`
	CourseID    string   `gorm:"index" json:"course_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Position    int      `json:"position"`
	Lessons     []Lesson `gorm:"constraint:OnDelete:CASCADE" json:"lessons"`
}

// Lesson content is empty until the lesson is first viewed. Once written it is
// a complete markdown document and is never regenerated.
type Lesson struct {
	ID               string                      `gorm:"primaryKey" json:"id"`
	ModuleID         string                      `gorm:"index" json:"module_id"`
	Title            string                      `json:"title"`
	Description      string                      `json:"description"`
	KeyTakeaways     datatypes.JSONSlice[string] `json:"key_takeaways"`
	EstimatedMinutes int                         `json:"estimated_minutes"`
	Content          string                      `json:"content,omitempty"`
	Position         int                         `json:"position"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

func (m *Module) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}
