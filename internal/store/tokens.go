package store

import (
	"context"
	"fmt"
	"time"

	"github.com/go-authgate/applink/internal/models"

	"gorm.io/gorm"
)

// pendingState reports ErrAlreadyAuthorized for an approved request token,
// ErrRecordNotFound for anything that is not a request token, and nil for a
// pending one.
func pendingState(token *models.Token) error {
	switch {
	case !token.IsRequestToken():
		return ErrRecordNotFound
	case token.AuthorizedBy != "":
		return ErrAlreadyAuthorized
	}
	return nil
}

// GetToken returns a live token. Expired tokens read as absent.
func (s *Store) GetToken(ctx context.Context, value string) (*models.Token, error) {
	var token models.Token
	err := s.db.WithContext(ctx).
		Where("value = ? AND expires_at > ?", value, s.clock.Now()).
		First(&token).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &token, nil
}

// GetRenewableToken returns an access token whose session window is still open.
func (s *Store) GetRenewableToken(ctx context.Context, value string) (*models.Token, error) {
	var token models.Token
	err := s.db.WithContext(ctx).
		Where("value = ? AND kind = ? AND session_expires_at > ?",
			value, models.TokenKindAccess, s.clock.Now()).
		First(&token).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &token, nil
}

// PutToken inserts or replaces a token.
func (s *Store) PutToken(ctx context.Context, token *models.Token) error {
	if err := s.db.WithContext(ctx).Save(token).Error; err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	return nil
}

// pendingRequest matches live request tokens nobody has approved yet.
func (s *Store) pendingRequest(ctx context.Context, value string) *gorm.DB {
	return s.db.WithContext(ctx).
		Where("value = ? AND kind = ? AND authorized_by = ? AND expires_at > ?",
			value, models.TokenKindRequest, "", s.clock.Now())
}

// AuthorizeRequestToken sets the approval columns with a conditional UPDATE,
// so exactly one of several racing approvals affects the row.
func (s *Store) AuthorizeRequestToken(
	ctx context.Context,
	value, authorizedBy, verifier string,
	at time.Time,
) (*models.Token, error) {
	token, err := s.GetToken(ctx, value)
	if err != nil {
		return nil, err
	}

	result := s.pendingRequest(ctx, value).Model(&models.Token{}).Updates(map[string]any{
		"authorized_by": authorizedBy,
		"verifier":      verifier,
		"authorized_at": at,
	})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to authorize token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, s.pendingMiss(ctx, value)
	}

	token.AuthorizedBy = authorizedBy
	token.Verifier = verifier
	token.AuthorizedAt = &at
	return token, nil
}

// RemovePendingRequestToken deletes the token only while it is unapproved.
func (s *Store) RemovePendingRequestToken(ctx context.Context, value string) (*models.Token, error) {
	token, err := s.GetToken(ctx, value)
	if err != nil {
		return nil, err
	}

	result := s.pendingRequest(ctx, value).Delete(&models.Token{})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to remove token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, s.pendingMiss(ctx, value)
	}
	return token, nil
}

// pendingMiss explains why a conditional write on a request token matched
// nothing.
func (s *Store) pendingMiss(ctx context.Context, value string) error {
	token, err := s.GetToken(ctx, value)
	if err != nil {
		return err
	}
	return pendingState(token)
}

// RemoveToken deletes a token. Only one of several concurrent callers
// observes a successful delete; the rest get ErrRecordNotFound.
func (s *Store) RemoveToken(ctx context.Context, value string) error {
	result := s.db.WithContext(ctx).Where("value = ?", value).Delete(&models.Token{})
	if result.Error != nil {
		return fmt.Errorf("failed to remove token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *Store) RemoveTokensByConsumer(ctx context.Context, consumerKey string) (int64, error) {
	result := s.db.WithContext(ctx).Where("consumer_key = ?", consumerKey).Delete(&models.Token{})
	return result.RowsAffected, result.Error
}

// RemoveExpiredTokens purges tokens past their session window.
func (s *Store) RemoveExpiredTokens(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("session_expires_at <= ?", s.clock.Now()).
		Delete(&models.Token{})
	return result.RowsAffected, result.Error
}

// ListAccessTokensByUser returns the user's access tokens that are live or
// still renewable, newest first.
func (s *Store) ListAccessTokensByUser(
	ctx context.Context,
	username string,
	offset, limit int,
) ([]models.Token, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Token{}).
		Where("kind = ? AND authorized_by = ? AND session_expires_at > ?",
			models.TokenKindAccess, username, s.clock.Now())

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var tokens []models.Token
	err := query.Order("issued_at DESC").Offset(offset).Limit(limit).Find(&tokens).Error
	return tokens, total, err
}

// CountActiveTokens counts unexpired tokens of the given kind.
func (s *Store) CountActiveTokens(ctx context.Context, kind models.TokenKind) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Token{}).
		Where("kind = ? AND expires_at > ?", kind, s.clock.Now()).
		Count(&count).Error
	return count, err
}
