package services

import (
	"context"
	"errors"
	"testing"

	"mentora/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchOrGenerateCacheHit(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	created := mustGenerateCourse(t, stack, "Python basics", models.DifficultyBeginner,
		makeSkeleton("Python basics for beginners", 4, 3, "python", "programming"))

	// A case/substring variant of the same query at the same difficulty must
	// hit the cache, not regenerate.
	course, isNew, err := stack.courses.SearchOrGenerate(ctx, "python", models.DifficultyBeginner, nil)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, course.ID)
	assert.EqualValues(t, 1, stack.gen.jsonCalls.Load())
}

func TestSearchOrGenerateTagMatch(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	created := mustGenerateCourse(t, stack, "Intro to Snakes", models.DifficultyBeginner,
		makeSkeleton("Intro to Snakes", 4, 3, "python", "reptiles"))

	course, isNew, err := stack.courses.SearchOrGenerate(ctx, "PYTHON", models.DifficultyBeginner, nil)
	require.NoError(t, err)
	assert.False(t, isNew)
	assert.Equal(t, created.ID, course.ID)
}

func TestSearchOrGenerateDifficultyPartitioning(t *testing.T) {
	stack := newTestStack(t)

	beginner := mustGenerateCourse(t, stack, "Python basics", models.DifficultyBeginner,
		makeSkeleton("Python basics", 4, 3, "python"))

	// Same query at a different difficulty always misses: difficulty is part
	// of the cache key.
	advanced := mustGenerateCourse(t, stack, "Python basics", models.DifficultyAdvanced,
		makeSkeleton("Python basics, advanced", 5, 4, "python"))

	assert.NotEqual(t, beginner.ID, advanced.ID)
	assert.EqualValues(t, 2, stack.gen.jsonCalls.Load())
}

func TestSearchOrGenerateReportsStatus(t *testing.T) {
	stack := newTestStack(t)
	stack.gen.jsonPayload = makeSkeleton("Rust", 4, 3, "rust")

	var statuses []string
	_, _, err := stack.courses.SearchOrGenerate(context.Background(), "Rust", models.DifficultyBeginner, func(msg string) {
		statuses = append(statuses, msg)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Scanning course library…", "Generating new course…", "Saving course…"}, statuses)
}

func TestSearchOrGenerateRejectsBadStructure(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	for name, skeleton := range map[string]*CourseSkeleton{
		"too few modules":    makeSkeleton("X", 3, 3),
		"too many modules":   makeSkeleton("X", 9, 3),
		"too few lessons":    makeSkeleton("X", 4, 2),
		"too many lessons":   makeSkeleton("X", 4, 6),
	} {
		stack.gen.jsonPayload = skeleton
		_, _, err := stack.courses.SearchOrGenerate(ctx, "X", models.DifficultyBeginner, nil)
		assert.Error(t, err, name)
	}

	// A rejected structure must leave nothing behind.
	courses, err := stack.courses.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)
}

func TestGeneratedCourseHasFreshIDs(t *testing.T) {
	stack := newTestStack(t)

	course := mustGenerateCourse(t, stack, "Go", models.DifficultyIntermediate,
		makeSkeleton("Go in practice", 4, 3, "go"))

	require.NotEmpty(t, course.ID)
	seen := map[string]bool{course.ID: true}
	for _, module := range course.Modules {
		require.NotEmpty(t, module.ID)
		assert.False(t, seen[module.ID], "duplicate module id")
		seen[module.ID] = true
		assert.Equal(t, course.ID, module.CourseID)
		for _, lesson := range module.Lessons {
			require.NotEmpty(t, lesson.ID)
			assert.False(t, seen[lesson.ID], "duplicate lesson id")
			seen[lesson.ID] = true
			assert.Equal(t, module.ID, lesson.ModuleID)
			assert.Empty(t, lesson.Content, "skeleton lessons must have no body")
		}
	}
}

func TestGetCourseNotFound(t *testing.T) {
	stack := newTestStack(t)

	_, err := stack.courses.Get(context.Background(), "no-such-course")
	assert.True(t, errors.Is(err, ErrCourseNotFound))
}

func TestUpdateLessonRequiresMatchingTriple(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	course := mustGenerateCourse(t, stack, "SQL", models.DifficultyBeginner,
		makeSkeleton("SQL", 4, 3, "sql"))
	lesson := course.Modules[0].Lessons[0]

	err := stack.courses.UpdateLesson(ctx, "wrong-course", course.Modules[0].ID, lesson.ID, "body")
	assert.True(t, errors.Is(err, ErrLessonNotFound))

	err = stack.courses.UpdateLesson(ctx, course.ID, course.Modules[1].ID, lesson.ID, "body")
	assert.True(t, errors.Is(err, ErrLessonNotFound))
}

// End-to-end: empty store, search "Quantum Physics" at Intermediate, then
// write a literal lesson body and read it back unchanged.
func TestCourseWorkflowEndToEnd(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	stack.gen.jsonPayload = makeSkeleton("Quantum Physics from First Principles", 5, 3, "physics")
	course, isNew, err := stack.courses.SearchOrGenerate(ctx, "Quantum Physics", models.DifficultyIntermediate, nil)
	require.NoError(t, err)
	assert.True(t, isNew)
	assert.Contains(t, course.Title, "Quantum Physics")
	assert.GreaterOrEqual(t, len(course.Modules), 4)
	assert.LessOrEqual(t, len(course.Modules), 8)

	first := course.Modules[0].Lessons[0]
	const body = "# Intro\nHello."
	require.NoError(t, stack.courses.UpdateLesson(ctx, course.ID, course.Modules[0].ID, first.ID, body))

	reloaded, err := stack.courses.Get(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, body, reloaded.Modules[0].Lessons[0].Content)
}
