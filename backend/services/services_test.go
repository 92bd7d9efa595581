package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"mentora/backend/models"
	"mentora/backend/utils"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBCounter atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:services_test_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := utils.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// fakeGenerator is a scripted llm.Generator. Text responses come from
// textReply, structured responses from a JSON round-trip of jsonPayload.
type fakeGenerator struct {
	textReply   string
	textDelay   time.Duration
	textErr     error
	jsonPayload interface{}
	jsonErr     error

	textCalls atomic.Int64
	jsonCalls atomic.Int64
}

func (f *fakeGenerator) GenerateText(ctx context.Context, system, user string) (string, error) {
	f.textCalls.Add(1)
	if f.textDelay > 0 {
		select {
		case <-time.After(f.textDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.textErr != nil {
		return "", f.textErr
	}
	return f.textReply, nil
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, system, user string, schema *genai.Schema, out interface{}) error {
	f.jsonCalls.Add(1)
	if f.jsonErr != nil {
		return f.jsonErr
	}
	raw, err := json.Marshal(f.jsonPayload)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// makeSkeleton builds a well-formed course skeleton fixture.
func makeSkeleton(title string, moduleCount, lessonCount int, tags ...string) *CourseSkeleton {
	skeleton := &CourseSkeleton{
		Title:         title,
		Description:   "A generated course about " + title,
		Audience:      "Students",
		Duration:      "10 hours",
		Tags:          tags,
		Prerequisites: []string{"Curiosity"},
		SkillsGained:  []string{"Fundamentals of " + title},
	}
	for m := 0; m < moduleCount; m++ {
		module := ModuleSkeleton{
			Title:       fmt.Sprintf("%s module %d", title, m+1),
			Description: "Module description",
		}
		for l := 0; l < lessonCount; l++ {
			module.Lessons = append(module.Lessons, LessonSkeleton{
				Title:            fmt.Sprintf("Lesson %d.%d", m+1, l+1),
				Description:      "Lesson description",
				KeyTakeaways:     []string{"Takeaway one", "Takeaway two"},
				EstimatedMinutes: 15,
			})
		}
		skeleton.Modules = append(skeleton.Modules, module)
	}
	return skeleton
}

type testStack struct {
	db      *gorm.DB
	gen     *fakeGenerator
	courses *CourseService
	content *ContentService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()

	db := newTestDB(t)
	gen := &fakeGenerator{textReply: "# Lesson\nGenerated body."}
	log := zap.NewNop()
	courses := NewCourseService(db, NewStructureGenerator(gen), log, 5*time.Second)
	content := NewContentService(courses, gen, log, 5*time.Second)

	return &testStack{db: db, gen: gen, courses: courses, content: content}
}

func mustGenerateCourse(t *testing.T, stack *testStack, query string, difficulty models.Difficulty, skeleton *CourseSkeleton) *models.Course {
	t.Helper()

	stack.gen.jsonPayload = skeleton
	course, isNew, err := stack.courses.SearchOrGenerate(context.Background(), query, difficulty, nil)
	if err != nil {
		t.Fatalf("SearchOrGenerate: %v", err)
	}
	if !isNew {
		t.Fatalf("expected a newly generated course for %q", query)
	}
	return course
}
