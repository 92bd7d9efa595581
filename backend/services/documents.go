package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"mentora/backend/llm"
	"mentora/backend/models"

	"github.com/google/generative-ai-go/genai"
	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

var ErrDocumentNotFound = errors.New("document not found")
var ErrEmptyDocument = errors.New("document contains no extractable text")

const (
	minQuizQuestions = 5
	maxQuizQuestions = 10
	quizOptionCount  = 4

	// maxDocumentRunes caps how much document text rides along in prompts.
	maxDocumentRunes = 20000
)

const summarySystemPrompt = `You summarize study material for students.
Produce a concise markdown summary: the main argument, the key points as a
bulleted list, and any definitions worth memorizing.`

const answerSystemPrompt = `You answer questions about a document a student
uploaded. Use only the document text below; if the answer is not in the
document, say so plainly.

Document:
%s`

const quizSystemPrompt = `You write multiple-choice quizzes from study
material. Each question has exactly 4 options and one correct answer,
identified by its zero-based index. Questions must be answerable from the
document alone.`

type Quiz struct {
	Questions []QuizQuestion `json:"questions"`
}

type QuizQuestion struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   int      `json:"answer"`
}

var quizSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"questions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"question": {Type: genai.TypeString},
					"options": {
						Type:  genai.TypeArray,
						Items: &genai.Schema{Type: genai.TypeString},
					},
					"answer": {Type: genai.TypeInteger},
				},
				Required: []string{"question", "options", "answer"},
			},
		},
	},
	Required: []string{"questions"},
}

type DocumentService struct {
	db      *gorm.DB
	gen     llm.Generator
	group   singleflight.Group
	log     *zap.Logger
	timeout time.Duration
}

func NewDocumentService(db *gorm.DB, gen llm.Generator, log *zap.Logger, timeout time.Duration) *DocumentService {
	return &DocumentService{
		db:      db,
		gen:     gen,
		log:     log.With(zap.String("service", "documents")),
		timeout: timeout,
	}
}

// Upload extracts the text of a PDF and stores it as a document.
func (s *DocumentService) Upload(ctx context.Context, userID, name string, raw []byte) (*models.Document, error) {
	text, err := extractText(raw)
	if err != nil {
		return nil, err
	}

	doc := models.Document{
		UserID: userID,
		Name:   name,
		Text:   text,
	}
	if err := s.db.WithContext(ctx).Create(&doc).Error; err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	s.log.Info("document uploaded",
		zap.String("document_id", doc.ID),
		zap.Int("text_len", len(text)),
	)
	return &doc, nil
}

func extractText(raw []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("read pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var sb strings.Builder
	if _, err := io.Copy(&sb, plain); err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}

func (s *DocumentService) List(ctx context.Context, userID string) ([]models.Document, error) {
	var docs []models.Document
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&docs).Error
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

func (s *DocumentService) Get(ctx context.Context, id string) (*models.Document, error) {
	var doc models.Document
	err := s.db.WithContext(ctx).First(&doc, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return &doc, nil
}

// EnsureSummary returns the document summary, generating and caching it on
// first request. Concurrent requesters share one in-flight generation.
func (s *DocumentService) EnsureSummary(ctx context.Context, id string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if doc.Summary != "" {
		return doc.Summary, nil
	}

	summary, err, _ := s.group.Do("summary:"+id, func() (interface{}, error) {
		current, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if current.Summary != "" {
			return current.Summary, nil
		}

		genCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		text, err := s.gen.GenerateText(genCtx, summarySystemPrompt, truncateRunes(current.Text, maxDocumentRunes))
		if err != nil {
			return nil, fmt.Errorf("generate summary: %w", err)
		}

		err = s.db.WithContext(ctx).
			Model(&models.Document{}).
			Where("id = ?", id).
			Update("summary", text).Error
		if err != nil {
			return nil, fmt.Errorf("store summary: %w", err)
		}
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return summary.(string), nil
}

// Answer responds to a question using only the document's text.
func (s *DocumentService) Answer(ctx context.Context, id, question string) (string, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	system := fmt.Sprintf(answerSystemPrompt, truncateRunes(doc.Text, maxDocumentRunes))
	answer, err := s.gen.GenerateText(genCtx, system, question)
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	return answer, nil
}

// GenerateQuiz builds a multiple-choice quiz from the document. Output
// violating the question or option bounds is a failure, never coerced.
func (s *DocumentService) GenerateQuiz(ctx context.Context, id string) (*Quiz, error) {
	doc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var quiz Quiz
	if err := s.gen.GenerateJSON(genCtx, quizSystemPrompt, truncateRunes(doc.Text, maxDocumentRunes), quizSchema, &quiz); err != nil {
		return nil, fmt.Errorf("generate quiz: %w", err)
	}

	if err := quiz.validate(); err != nil {
		return nil, fmt.Errorf("generated quiz rejected: %w", err)
	}
	return &quiz, nil
}

func (q *Quiz) validate() error {
	if n := len(q.Questions); n < minQuizQuestions || n > maxQuizQuestions {
		return fmt.Errorf("quiz has %d questions, want %d-%d", n, minQuizQuestions, maxQuizQuestions)
	}
	for i, question := range q.Questions {
		if len(question.Options) != quizOptionCount {
			return fmt.Errorf("question %d has %d options, want %d", i, len(question.Options), quizOptionCount)
		}
		if question.Answer < 0 || question.Answer >= quizOptionCount {
			return fmt.Errorf("question %d answer index %d out of range", i, question.Answer)
		}
	}
	return nil
}
