package model

import "time"

// Sessionは1回のログインに対応する永続レコード。
// アクセス/リフレッシュの両トークンと端末情報を1行で持つ。
type Session struct {
	ID     string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID string `gorm:"type:uuid;not null;index" json:"user_id"`

	// トークン値そのもの（ストアは中身を解釈しない）
	AccessToken  string `gorm:"not null;uniqueIndex" json:"-"`
	RefreshToken string `gorm:"not null;uniqueIndex" json:"-"`

	AccessExpiresAt  time.Time `gorm:"not null" json:"access_expires_at"`
	RefreshExpiresAt time.Time `gorm:"not null" json:"refresh_expires_at"`

	// falseは失効・置き換え済み。物理削除はreaperの仕事。
	IsActive bool `gorm:"not null;default:true;index" json:"is_active"`

	// アクセストークン検証が成功するたびに更新する
	LastActivityAt time.Time `gorm:"not null" json:"last_activity_at"`

	// 作成時に一度だけ取得する端末情報（refreshでは再取得しない）
	IPAddress     string `gorm:"not null" json:"ip_address"`
	UserAgent     string `gorm:"not null" json:"user_agent"`
	DeviceBrowser string `gorm:"type:varchar(30);not null" json:"device_browser"`
	DeviceOS      string `gorm:"type:varchar(30);not null" json:"device_os"`
	DeviceType    string `gorm:"type:varchar(30);not null" json:"device_type"`

	// refresh_expires_atのミラー。reaperの削除キー。
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CanAccessはアクセストークンとして使用可能かどうか。
func (s *Session) CanAccess(now time.Time) bool {
	return s.IsActive && now.Before(s.AccessExpiresAt)
}

// CanRefreshはリフレッシュに使用可能かどうか。
func (s *Session) CanRefresh(now time.Time) bool {
	return s.IsActive && now.Before(s.RefreshExpiresAt)
}
