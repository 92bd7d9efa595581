package services

import (
	"context"
	"fmt"

	"mentora/backend/llm"
	"mentora/backend/models"

	"github.com/google/generative-ai-go/genai"
)

const (
	minModules = 4
	maxModules = 8
	minLessons = 3
	maxLessons = 5
)

// CourseSkeleton is the course outline produced by the model: metadata plus
// module and lesson stubs. Lesson bodies are never part of the skeleton.
type CourseSkeleton struct {
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Audience      string           `json:"audience"`
	Duration      string           `json:"duration"`
	Tags          []string         `json:"tags"`
	Prerequisites []string         `json:"prerequisites"`
	SkillsGained  []string         `json:"skills_gained"`
	Modules       []ModuleSkeleton `json:"modules"`
}

type ModuleSkeleton struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Lessons     []LessonSkeleton `json:"lessons"`
}

type LessonSkeleton struct {
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	KeyTakeaways     []string `json:"key_takeaways"`
	EstimatedMinutes int      `json:"estimated_minutes"`
}

type StructureGenerator struct {
	gen llm.Generator
}

func NewStructureGenerator(gen llm.Generator) *StructureGenerator {
	return &StructureGenerator{gen: gen}
}

var lessonSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
		"key_takeaways": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"estimated_minutes": {Type: genai.TypeInteger},
	},
	Required: []string{"title", "description", "key_takeaways", "estimated_minutes"},
}

var moduleSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
		"lessons": {
			Type:  genai.TypeArray,
			Items: lessonSchema,
		},
	},
	Required: []string{"title", "description", "lessons"},
}

var courseSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"title":       {Type: genai.TypeString},
		"description": {Type: genai.TypeString},
		"audience":    {Type: genai.TypeString},
		"duration":    {Type: genai.TypeString},
		"tags": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"prerequisites": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"skills_gained": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"modules": {
			Type:  genai.TypeArray,
			Items: moduleSchema,
		},
	},
	Required: []string{"title", "description", "audience", "duration", "tags", "prerequisites", "skills_gained", "modules"},
}

const structureSystemPrompt = `You are a curriculum designer for an online learning platform.
Design a complete course outline for the requested topic and difficulty.
The course must have between 4 and 8 modules, and every module must have
between 3 and 5 lessons. Lessons carry a title, a one-paragraph description,
3-5 key takeaways and an estimated duration in minutes. Do not write lesson
body content.`

// GenerateStructure produces a validated course skeleton for a topic. Output
// that violates the module or lesson bounds is a generation failure, never
// coerced into range.
func (g *StructureGenerator) GenerateStructure(ctx context.Context, topic string, difficulty models.Difficulty) (*CourseSkeleton, error) {
	user := fmt.Sprintf("Topic: %s\nDifficulty: %s", topic, difficulty)

	var skeleton CourseSkeleton
	if err := g.gen.GenerateJSON(ctx, structureSystemPrompt, user, courseSchema, &skeleton); err != nil {
		return nil, fmt.Errorf("generate course structure: %w", err)
	}

	if err := skeleton.validate(); err != nil {
		return nil, fmt.Errorf("generated structure rejected: %w", err)
	}
	return &skeleton, nil
}

func (s *CourseSkeleton) validate() error {
	if s.Title == "" {
		return fmt.Errorf("missing course title")
	}
	if n := len(s.Modules); n < minModules || n > maxModules {
		return fmt.Errorf("course has %d modules, want %d-%d", n, minModules, maxModules)
	}
	for i, m := range s.Modules {
		if n := len(m.Lessons); n < minLessons || n > maxLessons {
			return fmt.Errorf("module %d has %d lessons, want %d-%d", i, n, minLessons, maxLessons)
		}
	}
	return nil
}
