package services

import (
	"context"
	"errors"
	"testing"

	"mentora/backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestViewer(t *testing.T, moduleCount, lessonCount int) (*testStack, *Viewer) {
	t.Helper()

	stack := newTestStack(t)
	course := mustGenerateCourse(t, stack, "Go", models.DifficultyBeginner,
		makeSkeleton("Go", moduleCount, lessonCount, "go"))
	return stack, NewViewer(course, stack.content, stack.gen)
}

func TestViewerSelectMaterializesLesson(t *testing.T) {
	_, viewer := newTestViewer(t, 4, 3)

	lesson, err := viewer.Select(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, lesson.Content)

	moduleIdx, lessonIdx := viewer.Active()
	assert.Equal(t, 0, moduleIdx)
	assert.Equal(t, 0, lessonIdx)
}

func TestViewerSelectOutOfRange(t *testing.T) {
	_, viewer := newTestViewer(t, 4, 3)

	_, err := viewer.Select(context.Background(), 4, 0)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))

	_, err = viewer.Select(context.Background(), 0, 3)
	assert.True(t, errors.Is(err, ErrIndexOutOfRange))
}

func TestViewerNextAdvancesWithinModule(t *testing.T) {
	_, viewer := newTestViewer(t, 4, 3)
	ctx := context.Background()

	_, err := viewer.Select(ctx, 0, 0)
	require.NoError(t, err)

	_, err = viewer.Next(ctx)
	require.NoError(t, err)

	moduleIdx, lessonIdx := viewer.Active()
	assert.Equal(t, 0, moduleIdx)
	assert.Equal(t, 1, lessonIdx)
}

func TestViewerNextRollsOverToNextModule(t *testing.T) {
	_, viewer := newTestViewer(t, 4, 3)
	ctx := context.Background()

	_, err := viewer.Select(ctx, 0, 2)
	require.NoError(t, err)

	_, err = viewer.Next(ctx)
	require.NoError(t, err)

	moduleIdx, lessonIdx := viewer.Active()
	assert.Equal(t, 1, moduleIdx)
	assert.Equal(t, 0, lessonIdx)
}

func TestViewerNextAtCourseEndIsNoOp(t *testing.T) {
	_, viewer := newTestViewer(t, 4, 3)
	ctx := context.Background()

	last, err := viewer.Select(ctx, 3, 2)
	require.NoError(t, err)

	same, err := viewer.Next(ctx)
	require.NoError(t, err)
	assert.Equal(t, last.ID, same.ID)

	moduleIdx, lessonIdx := viewer.Active()
	assert.Equal(t, 3, moduleIdx)
	assert.Equal(t, 2, lessonIdx)
}

func TestViewerSelectResetsTranscript(t *testing.T) {
	stack, viewer := newTestViewer(t, 4, 3)
	ctx := context.Background()

	_, err := viewer.Select(ctx, 0, 0)
	require.NoError(t, err)

	stack.gen.textReply = "Great question."
	_, err = viewer.Ask(ctx, "What is a goroutine?")
	require.NoError(t, err)
	assert.Len(t, viewer.Transcript(), 3)

	// Moving on wipes the conversation down to a greeting for the new lesson.
	_, err = viewer.Next(ctx)
	require.NoError(t, err)

	transcript := viewer.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, models.RoleAssistant, transcript[0].Role)
	assert.Contains(t, transcript[0].Content, viewer.ActiveLesson().Title)
}

func TestViewerAskAppendsTurns(t *testing.T) {
	stack, viewer := newTestViewer(t, 4, 3)
	ctx := context.Background()

	_, err := viewer.Select(ctx, 0, 0)
	require.NoError(t, err)

	stack.gen.textReply = "A goroutine is a lightweight thread."
	reply, err := viewer.Ask(ctx, "What is a goroutine?")
	require.NoError(t, err)
	assert.Equal(t, "A goroutine is a lightweight thread.", reply)

	transcript := viewer.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, models.RoleUser, transcript[1].Role)
	assert.Equal(t, "What is a goroutine?", transcript[1].Content)
	assert.Equal(t, models.RoleAssistant, transcript[2].Role)
}
