package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mentora/backend/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recentCourseLimit bounds the search window: only the latest N courses are
// candidates for a cache hit.
const recentCourseLimit = 30

var ErrCourseNotFound = errors.New("course not found")
var ErrLessonNotFound = errors.New("lesson not found")

// StatusFunc receives human-readable progress strings during long-running
// operations. Purely observational; never affects control flow.
type StatusFunc func(msg string)

type CourseService struct {
	db        *gorm.DB
	structure *StructureGenerator
	log       *zap.Logger
	timeout   time.Duration
}

func NewCourseService(db *gorm.DB, structure *StructureGenerator, log *zap.Logger, timeout time.Duration) *CourseService {
	return &CourseService{
		db:        db,
		structure: structure,
		log:       log.With(zap.String("service", "courses")),
		timeout:   timeout,
	}
}

func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	err := s.preloadTree(s.db.WithContext(ctx)).
		Order("created_at DESC").
		Limit(recentCourseLimit).
		Find(&courses).Error
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (s *CourseService) Get(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	err := s.preloadTree(s.db.WithContext(ctx)).First(&course, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCourseNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &course, nil
}

func (s *CourseService) preloadTree(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		}).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
			return db.Order("position ASC")
		})
}

// SearchOrGenerate returns an existing course matching (query, difficulty) or
// generates and persists a new one. A course matches when its title or any tag
// contains the query case-insensitively AND its difficulty equals the request
// exactly; the first match in creation-descending order wins. Difficulty is
// part of the cache key: the same query at another difficulty always misses.
func (s *CourseService) SearchOrGenerate(ctx context.Context, query string, difficulty models.Difficulty, onStatus StatusFunc) (*models.Course, bool, error) {
	if onStatus == nil {
		onStatus = func(string) {}
	}

	onStatus("Scanning course library…")
	courses, err := s.List(ctx)
	if err != nil {
		return nil, false, err
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	for i := range courses {
		if courseMatches(&courses[i], needle, difficulty) {
			onStatus("Found an existing course.")
			return &courses[i], false, nil
		}
	}

	onStatus("Generating new course…")
	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	skeleton, err := s.structure.GenerateStructure(genCtx, query, difficulty)
	if err != nil {
		return nil, false, err
	}

	onStatus("Saving course…")
	course, err := s.persistSkeleton(ctx, skeleton, difficulty)
	if err != nil {
		return nil, false, err
	}

	s.log.Info("course generated",
		zap.String("course_id", course.ID),
		zap.String("query", query),
		zap.String("difficulty", string(difficulty)),
	)
	return course, true, nil
}

func courseMatches(course *models.Course, needle string, difficulty models.Difficulty) bool {
	if course.Difficulty != difficulty {
		return false
	}
	if strings.Contains(strings.ToLower(course.Title), needle) {
		return true
	}
	for _, tag := range course.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// persistSkeleton writes the course, its modules and its lesson stubs in one
// transaction: all rows or none, so a failure can never leave an orphaned
// partial course behind. Identifiers are minted here; anything the generator
// returned internally is discarded.
func (s *CourseService) persistSkeleton(ctx context.Context, skeleton *CourseSkeleton, difficulty models.Difficulty) (*models.Course, error) {
	course := models.Course{
		ID:            uuid.NewString(),
		Title:         skeleton.Title,
		Description:   skeleton.Description,
		Audience:      skeleton.Audience,
		Difficulty:    difficulty,
		Duration:      skeleton.Duration,
		Tags:          skeleton.Tags,
		Prerequisites: skeleton.Prerequisites,
		SkillsGained:  skeleton.SkillsGained,
	}

	for mi, ms := range skeleton.Modules {
		module := models.Module{
			ID:          uuid.NewString(),
			CourseID:    course.ID,
			Title:       ms.Title,
			Description: ms.Description,
			Position:    mi,
		}
		for li, ls := range ms.Lessons {
			module.Lessons = append(module.Lessons, models.Lesson{
				ID:               uuid.NewString(),
				ModuleID:         module.ID,
				Title:            ls.Title,
				Description:      ls.Description,
				KeyTakeaways:     ls.KeyTakeaways,
				EstimatedMinutes: ls.EstimatedMinutes,
				Position:         li,
			})
		}
		course.Modules = append(course.Modules, module)
	}

	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&course).Error
	}); err != nil {
		return nil, fmt.Errorf("persist course: %w", err)
	}

	return &course, nil
}

// UpdateLesson writes a lesson body, keyed by the full (course, module,
// lesson) triple so a stale or mismatched id cannot touch another row.
func (s *CourseService) UpdateLesson(ctx context.Context, courseID, moduleID, lessonID, content string) error {
	var module models.Module
	err := s.db.WithContext(ctx).
		First(&module, "id = ? AND course_id = ?", moduleID, courseID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrLessonNotFound
	}
	if err != nil {
		return fmt.Errorf("resolve module: %w", err)
	}

	result := s.db.WithContext(ctx).
		Model(&models.Lesson{}).
		Where("id = ? AND module_id = ?", lessonID, moduleID).
		Update("content", content)
	if result.Error != nil {
		return fmt.Errorf("update lesson: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrLessonNotFound
	}
	return nil
}

func (s *CourseService) UpdateCover(ctx context.Context, courseID, imageBase64 string) error {
	result := s.db.WithContext(ctx).
		Model(&models.Course{}).
		Where("id = ?", courseID).
		Update("cover_image", imageBase64)
	if result.Error != nil {
		return fmt.Errorf("update cover image: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}
