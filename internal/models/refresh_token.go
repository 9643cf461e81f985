package models

import (
	"time"

	"gorm.io/gorm"
)

// RefreshToken is a stored refresh token. Tokens are rotated on every
// refresh: the presented token is revoked and a new row is written.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"size:36;index" json:"userId"`
	Token     string    `gorm:"type:text;not null" json:"-"`
	ExpiresAt time.Time `json:"expiresAt"`
	IsRevoked bool      `gorm:"default:false" json:"isRevoked"`

	User User `gorm:"foreignKey:UserID" json:"-"`
}

// ActiveRefreshToken looks up a token row that is still usable: owned by the
// user, not revoked and not expired at now.
func ActiveRefreshToken(db *gorm.DB, token, userID string, now time.Time) (*RefreshToken, error) {
	var stored RefreshToken
	err := db.Where("token = ? AND user_id = ? AND is_revoked = ? AND expires_at > ?",
		token, userID, false, now).First(&stored).Error
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// RevokeRefreshTokens revokes every outstanding token of a user.
func RevokeRefreshTokens(db *gorm.DB, userID string) error {
	return db.Model(&RefreshToken{}).
		Where("user_id = ? AND is_revoked = ?", userID, false).
		Update("is_revoked", true).Error
}
