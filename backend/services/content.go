package services

import (
	"context"
	"fmt"
	"time"

	"mentora/backend/llm"
	"mentora/backend/models"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const lessonSystemPrompt = `You are writing lessons for an online course.
Write the full lesson as a standalone markdown document: an introduction,
clearly headed sections covering the material, worked examples where they
help, and a short summary. Write for the stated difficulty level. Return
only the markdown body.`

// ContentService materializes lesson bodies lazily: a lesson's content is
// generated the first time it is requested, persisted, and never regenerated.
type ContentService struct {
	courses *CourseService
	gen     llm.Generator
	group   singleflight.Group
	log     *zap.Logger
	timeout time.Duration
}

func NewContentService(courses *CourseService, gen llm.Generator, log *zap.Logger, timeout time.Duration) *ContentService {
	return &ContentService{
		courses: courses,
		gen:     gen,
		log:     log.With(zap.String("service", "content")),
		timeout: timeout,
	}
}

// EnsureLessonContent returns the lesson body, generating and persisting it
// on first request. Concurrent callers for the same lesson share a single
// in-flight generation; later callers receive the same result.
func (s *ContentService) EnsureLessonContent(ctx context.Context, courseID, moduleID, lessonID string) (string, error) {
	course, module, lesson, err := s.resolve(ctx, courseID, moduleID, lessonID)
	if err != nil {
		return "", err
	}
	if lesson.Content != "" {
		return lesson.Content, nil
	}

	content, err, _ := s.group.Do(lessonID, func() (interface{}, error) {
		// Re-read under the flight: a previous flight may have finished
		// between our read and this call.
		_, _, current, err := s.resolve(ctx, courseID, moduleID, lessonID)
		if err != nil {
			return nil, err
		}
		if current.Content != "" {
			return current.Content, nil
		}
		return s.generate(ctx, course, module, current)
	})
	if err != nil {
		return "", err
	}
	return content.(string), nil
}

func (s *ContentService) resolve(ctx context.Context, courseID, moduleID, lessonID string) (*models.Course, *models.Module, *models.Lesson, error) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return nil, nil, nil, err
	}
	for mi := range course.Modules {
		module := &course.Modules[mi]
		if module.ID != moduleID {
			continue
		}
		for li := range module.Lessons {
			if module.Lessons[li].ID == lessonID {
				return course, module, &module.Lessons[li], nil
			}
		}
	}
	return nil, nil, nil, ErrLessonNotFound
}

func (s *ContentService) generate(ctx context.Context, course *models.Course, module *models.Module, lesson *models.Lesson) (string, error) {
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user := fmt.Sprintf("Course: %s\nModule: %s\nLesson: %s\nDifficulty: %s",
		course.Title, module.Title, lesson.Title, course.Difficulty)

	content, err := s.gen.GenerateText(genCtx, lessonSystemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("generate lesson content: %w", err)
	}

	if err := s.courses.UpdateLesson(ctx, course.ID, module.ID, lesson.ID, content); err != nil {
		return "", err
	}

	s.log.Info("lesson content materialized",
		zap.String("course_id", course.ID),
		zap.String("lesson_id", lesson.ID),
	)
	return content, nil
}
