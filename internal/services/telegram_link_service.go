package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"uasfleet/hangar/internal/common"
	"uasfleet/hangar/internal/models/dtos"
	gormModels "uasfleet/hangar/internal/models/gorm"

	"gorm.io/gorm"
)

// LinkCodeTTL is the validity window for a Telegram link code.
const LinkCodeTTL = 10 * time.Minute

// TelegramLinkService binds Telegram accounts to pilot profiles through
// short-lived one-time codes. Codes are issued to authenticated pilots and
// consumed by the bot integration.
type TelegramLinkService struct {
	db *gorm.DB
}

// NewTelegramLinkService creates a new Telegram link service
func NewTelegramLinkService(db *gorm.DB) *TelegramLinkService {
	return &TelegramLinkService{db: db}
}

// GenerateCode issues a fresh one-time code for the pilot, valid for ten
// minutes. The pilot profile is created lazily if absent so the completion
// step always has a row to update.
func (s *TelegramLinkService) GenerateCode(ctx context.Context, identity IdentityMeta) (*dtos.LinkCodeResponse, error) {
	var linkCode gormModels.TelegramLinkCode

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensurePilotProfile(tx, identity); err != nil {
			return err
		}

		// Retry on the (unlikely) unique-code collision.
		for attempt := 0; attempt < 3; attempt++ {
			code, err := common.GenerateLinkCode()
			if err != nil {
				return err
			}

			linkCode = gormModels.TelegramLinkCode{
				Code:      code,
				PilotID:   identity.PilotID,
				ExpiresAt: time.Now().Add(LinkCodeTTL),
			}
			if err := tx.Create(&linkCode).Error; err == nil {
				return nil
			} else if attempt == 2 {
				return fmt.Errorf("failed to store link code: %w", err)
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return &dtos.LinkCodeResponse{
		Code:      linkCode.Code,
		ExpiresAt: linkCode.ExpiresAt,
	}, nil
}

// CompleteLink consumes a code presented by the bot and stores the Telegram
// binding on the owning pilot's profile. A code completes exactly one link:
// used and expired codes are rejected with ErrInvalidCode and nothing is
// written.
func (s *TelegramLinkService) CompleteLink(ctx context.Context, code string, chatID int64, username string) error {
	if code == "" {
		return ErrInvalidCode
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var linkCode gormModels.TelegramLinkCode
		err := tx.Where("code = ? AND used = ? AND expires_at > ?", code, false, time.Now()).
			First(&linkCode).Error
		if err == gorm.ErrRecordNotFound {
			return ErrInvalidCode
		}
		if err != nil {
			return fmt.Errorf("failed to fetch link code: %w", err)
		}

		now := time.Now()
		linkCode.Used = true
		linkCode.UsedAt = &now
		if err := tx.Save(&linkCode).Error; err != nil {
			return fmt.Errorf("failed to mark code used: %w", err)
		}

		updates := map[string]interface{}{
			"telegram_chat_id":   chatID,
			"telegram_username":  username,
			"telegram_verified":  true,
			"telegram_linked_at": now,
		}
		if err := tx.Model(&gormModels.Pilot{}).
			Where("id = ?", linkCode.PilotID).
			Updates(updates).Error; err != nil {
			return fmt.Errorf("failed to update pilot telegram fields: %w", err)
		}

		log.Printf("Linked telegram chat %d to pilot %s", chatID, linkCode.PilotID)
		return nil
	})

	return err
}
