package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mentora/backend/llm"
	"mentora/backend/models"
)

var ErrIndexOutOfRange = errors.New("lesson index out of range")

// maxGroundingRunes caps how much lesson text is sent as tutor context.
const maxGroundingRunes = 8000

const tutorSystemPrompt = `You are a patient tutor helping a student through one
lesson of an online course. Ground every answer in the lesson text below. If
the question falls outside the lesson, say so and steer back to the material.

Lesson:
%s`

// Viewer walks a course's module/lesson grid. Changing position ensures the
// newly active lesson has content and resets the tutor transcript to a
// lesson-scoped greeting.
type Viewer struct {
	course  *models.Course
	content *ContentService
	gen     llm.Generator

	moduleIdx  int
	lessonIdx  int
	transcript []models.ChatTurn
}

func NewViewer(course *models.Course, content *ContentService, gen llm.Generator) *Viewer {
	return &Viewer{course: course, content: content, gen: gen}
}

// Select moves to (moduleIdx, lessonIdx), materializing the lesson's content
// if it has none yet.
func (v *Viewer) Select(ctx context.Context, moduleIdx, lessonIdx int) (*models.Lesson, error) {
	if moduleIdx < 0 || moduleIdx >= len(v.course.Modules) {
		return nil, fmt.Errorf("module %d: %w", moduleIdx, ErrIndexOutOfRange)
	}
	module := &v.course.Modules[moduleIdx]
	if lessonIdx < 0 || lessonIdx >= len(module.Lessons) {
		return nil, fmt.Errorf("lesson %d: %w", lessonIdx, ErrIndexOutOfRange)
	}
	lesson := &module.Lessons[lessonIdx]

	if lesson.Content == "" {
		content, err := v.content.EnsureLessonContent(ctx, v.course.ID, module.ID, lesson.ID)
		if err != nil {
			return nil, err
		}
		lesson.Content = content
	}

	v.moduleIdx = moduleIdx
	v.lessonIdx = lessonIdx
	v.transcript = []models.ChatTurn{{
		Role:    models.RoleAssistant,
		Content: v.Greeting(),
	}}
	return lesson, nil
}

// Next advances to the following lesson, rolling over to the next module's
// first lesson at a module boundary. At the last lesson of the last module it
// is a no-op and returns the current lesson.
func (v *Viewer) Next(ctx context.Context) (*models.Lesson, error) {
	moduleIdx, lessonIdx := v.moduleIdx, v.lessonIdx
	module := &v.course.Modules[moduleIdx]

	switch {
	case lessonIdx+1 < len(module.Lessons):
		lessonIdx++
	case moduleIdx+1 < len(v.course.Modules):
		moduleIdx++
		lessonIdx = 0
	default:
		return &module.Lessons[lessonIdx], nil
	}
	return v.Select(ctx, moduleIdx, lessonIdx)
}

func (v *Viewer) Active() (moduleIdx, lessonIdx int) {
	return v.moduleIdx, v.lessonIdx
}

func (v *Viewer) ActiveLesson() *models.Lesson {
	return &v.course.Modules[v.moduleIdx].Lessons[v.lessonIdx]
}

func (v *Viewer) Greeting() string {
	return fmt.Sprintf("Hi! I'm your tutor for %q. Ask me anything about this lesson.",
		v.ActiveLesson().Title)
}

func (v *Viewer) Transcript() []models.ChatTurn {
	return v.transcript
}

// RestoreTranscript replaces the greeting with history carried by a client
// that resumed an earlier conversation on the same lesson.
func (v *Viewer) RestoreTranscript(turns []models.ChatTurn) {
	if len(turns) > 0 {
		v.transcript = turns
	}
}

// Ask sends one tutoring question grounded in the active lesson. The lesson
// text, capped at a fixed length, is the system context; prior turns ride
// along as conversational history.
func (v *Viewer) Ask(ctx context.Context, message string) (string, error) {
	lesson := v.ActiveLesson()
	system := fmt.Sprintf(tutorSystemPrompt, truncateRunes(lesson.Content, maxGroundingRunes))

	reply, err := v.gen.GenerateText(ctx, system, renderHistory(v.transcript, message))
	if err != nil {
		return "", fmt.Errorf("tutor reply: %w", err)
	}

	v.transcript = append(v.transcript,
		models.ChatTurn{Role: models.RoleUser, Content: message},
		models.ChatTurn{Role: models.RoleAssistant, Content: reply},
	)
	return reply, nil
}

func renderHistory(turns []models.ChatTurn, message string) string {
	var sb strings.Builder
	for _, turn := range turns {
		switch turn.Role {
		case models.RoleUser:
			sb.WriteString("Student: ")
		default:
			sb.WriteString("Tutor: ")
		}
		sb.WriteString(turn.Content)
		sb.WriteString("\n")
	}
	sb.WriteString("Student: ")
	sb.WriteString(message)
	return sb.String()
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
