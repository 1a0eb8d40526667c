package model

import "time"

// 認証まわりのセキュリティイベントの種類。
type AuthEventType string

const (
	//ログイン成功。
	AuthEventLogin AuthEventType = "LOGIN"

	//ログアウト（単一セッション）。
	AuthEventLogout AuthEventType = "LOGOUT"

	//全セッションのログアウト。
	AuthEventLogoutAll AuthEventType = "LOGOUT_ALL"

	//リフレッシュによるトークンローテーション。
	AuthEventRefresh AuthEventType = "REFRESH"

	//無効・改ざん・期限切れトークンの拒否。
	AuthEventInvalidCredential AuthEventType = "INVALID_CREDENTIAL"

	//ロール不一致による403。
	AuthEventRoleDenied AuthEventType = "ROLE_DENIED"
)

// 認証イベントログ（異常検知・監査用）。
// 「誰が」「どの端末から」「何をしたか」を残す。
// トークンの生値は絶対に保存しない。
type AuthEvent struct {
	//IDは主キー
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//対象ユーザーのID。特定できない場合は空。
	UserID string `gorm:"type:varchar(36);index" json:"user_id"`

	//関連セッションのID。無ければ空。
	SessionID string `gorm:"type:varchar(36);index" json:"session_id"`

	//イベントの種類。
	Type AuthEventType `gorm:"type:varchar(40);not null;index" json:"type"`

	//リクエスト元の情報。
	IPAddress string `json:"ip_address"`
	UserAgent string `json:"user_agent"`

	//補足（ロール不一致時の要求ロールなど）。
	Detail string `gorm:"type:text" json:"detail"`

	//作成時刻
	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
