package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"mentora/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureLessonContentMaterializesOnce(t *testing.T) {
	stack := newTestStack(t)
	ctx := context.Background()

	course := mustGenerateCourse(t, stack, "Go", models.DifficultyBeginner,
		makeSkeleton("Go", 4, 3, "go"))
	module := course.Modules[0]
	lesson := module.Lessons[0]

	first, err := stack.content.EnsureLessonContent(ctx, course.ID, module.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Lesson\nGenerated body.", first)

	// The second call must read the cached value without another generation.
	second, err := stack.content.EnsureLessonContent(ctx, course.ID, module.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, stack.gen.textCalls.Load())

	reloaded, err := stack.courses.Get(ctx, course.ID)
	require.NoError(t, err)
	assert.Equal(t, first, reloaded.Modules[0].Lessons[0].Content)
}

func TestEnsureLessonContentDeduplicatesConcurrentCallers(t *testing.T) {
	stack := newTestStack(t)
	stack.gen.textDelay = 50 * time.Millisecond
	ctx := context.Background()

	course := mustGenerateCourse(t, stack, "Go", models.DifficultyBeginner,
		makeSkeleton("Go", 4, 3, "go"))
	module := course.Modules[0]
	lesson := module.Lessons[0]

	const callers = 5
	results := make([]string, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = stack.content.EnsureLessonContent(ctx, course.ID, module.ID, lesson.ID)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, results[0], results[i])
	}
	assert.EqualValues(t, 1, stack.gen.textCalls.Load(), "concurrent callers must share one generation")
}

func TestEnsureLessonContentUnknownLesson(t *testing.T) {
	stack := newTestStack(t)

	course := mustGenerateCourse(t, stack, "Go", models.DifficultyBeginner,
		makeSkeleton("Go", 4, 3, "go"))

	_, err := stack.content.EnsureLessonContent(context.Background(), course.ID, course.Modules[0].ID, "no-such-lesson")
	assert.True(t, errors.Is(err, ErrLessonNotFound))
}

func TestEnsureLessonContentGenerationFailure(t *testing.T) {
	stack := newTestStack(t)
	stack.gen.textErr = errors.New("provider down")
	ctx := context.Background()

	course := mustGenerateCourse(t, stack, "Go", models.DifficultyBeginner,
		makeSkeleton("Go", 4, 3, "go"))
	module := course.Modules[0]
	lesson := module.Lessons[0]

	_, err := stack.content.EnsureLessonContent(ctx, course.ID, module.ID, lesson.ID)
	require.Error(t, err)

	// A failed generation leaves the lesson unloaded; a later call retries.
	stack.gen.textErr = nil
	content, err := stack.content.EnsureLessonContent(ctx, course.ID, module.ID, lesson.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Lesson\nGenerated body.", content)
}
