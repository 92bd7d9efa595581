package services

import (
	"context"
	"errors"
	"fmt"

	"mentora/backend/models"

	"gorm.io/gorm"
)

var ErrCompanionNotFound = errors.New("companion not found")

const recentSessionLimit = 10

type CompanionService struct {
	db *gorm.DB
}

func NewCompanionService(db *gorm.DB) *CompanionService {
	return &CompanionService{db: db}
}

func (s *CompanionService) Create(ctx context.Context, companion *models.Companion) error {
	if err := s.db.WithContext(ctx).Create(companion).Error; err != nil {
		return fmt.Errorf("create companion: %w", err)
	}
	return nil
}

func (s *CompanionService) List(ctx context.Context, userID string) ([]models.Companion, error) {
	var companions []models.Companion
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&companions).Error
	if err != nil {
		return nil, fmt.Errorf("list companions: %w", err)
	}
	return companions, nil
}

func (s *CompanionService) Get(ctx context.Context, id string) (*models.Companion, error) {
	var companion models.Companion
	err := s.db.WithContext(ctx).First(&companion, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCompanionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get companion: %w", err)
	}
	return &companion, nil
}

// RecordSession appends one entry to the user's session history.
func (s *CompanionService) RecordSession(ctx context.Context, companionID, userID string) error {
	if _, err := s.Get(ctx, companionID); err != nil {
		return err
	}
	record := models.SessionRecord{CompanionID: companionID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("record session: %w", err)
	}
	return nil
}

// RecentSessions returns the companions from the user's latest sessions,
// newest first.
func (s *CompanionService) RecentSessions(ctx context.Context, userID string) ([]models.Companion, error) {
	var records []models.SessionRecord
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(recentSessionLimit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	companions := make([]models.Companion, 0, len(records))
	for _, record := range records {
		companion, err := s.Get(ctx, record.CompanionID)
		if err != nil {
			continue
		}
		companions = append(companions, *companion)
	}
	return companions, nil
}

func (s *CompanionService) AddBookmark(ctx context.Context, companionID, userID string) error {
	if _, err := s.Get(ctx, companionID); err != nil {
		return err
	}

	var existing models.Bookmark
	err := s.db.WithContext(ctx).
		First(&existing, "companion_id = ? AND user_id = ?", companionID, userID).Error
	if err == nil {
		return nil // already bookmarked
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("check bookmark: %w", err)
	}

	bookmark := models.Bookmark{CompanionID: companionID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(&bookmark).Error; err != nil {
		return fmt.Errorf("add bookmark: %w", err)
	}
	return nil
}

func (s *CompanionService) RemoveBookmark(ctx context.Context, companionID, userID string) error {
	err := s.db.WithContext(ctx).
		Where("companion_id = ? AND user_id = ?", companionID, userID).
		Delete(&models.Bookmark{}).Error
	if err != nil {
		return fmt.Errorf("remove bookmark: %w", err)
	}
	return nil
}

func (s *CompanionService) Bookmarked(ctx context.Context, userID string) ([]models.Companion, error) {
	var bookmarks []models.Bookmark
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&bookmarks).Error
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}

	companions := make([]models.Companion, 0, len(bookmarks))
	for _, bookmark := range bookmarks {
		companion, err := s.Get(ctx, bookmark.CompanionID)
		if err != nil {
			continue
		}
		companions = append(companions, *companion)
	}
	return companions, nil
}
