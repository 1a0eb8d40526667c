package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// accesstokenの有効期限
const AccessTokenTTL = 15 * time.Minute

// refreshtokenの有効期限
const RefreshTokenTTL = 7 * 24 * time.Hour

const bearerPrefix = "Bearer "

// claimsのtyp値。検証側で必ず突き合わせる。
const (
	kindAccess  = "access"
	kindRefresh = "refresh"
)

// 署名不正・期限切れ・種別違いをすべて同じエラーに潰す。
// 外部に「どう無効か」を区別させない。
var ErrInvalidToken = errors.New("invalid token")

// 現在の時間
type Clock interface {
	Now() time.Time
}

// IssuePairの結果。expiryは発行時点のnow+TTLで確定する。
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// 検証済みアクセストークンの中身。
type AccessPayload struct {
	UserID    string
	Email     string
	SessionID string
}

// 検証済みリフレッシュトークンの中身。
// AccessPayloadと型を分けて、種別違いの値が混ざらないようにする。
type RefreshPayload struct {
	UserID    string
	Email     string
	SessionID string
}

type credentialClaims struct {
	Email     string `json:"email"`
	SessionID string `json:"sid"`
	Kind      string `json:"typ"`
	jwt.RegisteredClaims
}

// ServiceはHS256署名付きトークンの発行と検証を行う。
type Service struct {
	secret []byte
	clock  Clock
}

// DI
func NewService(secret string, clock Clock) *Service {
	return &Service{
		secret: []byte(secret),
		clock:  clock,
	}
}

// IssuePairはアクセス・リフレッシュのペアを発行する。
// 両方とも同じsession IDに紐づく。
func (s *Service) IssuePair(userID string, email string, sessionID string) (TokenPair, error) {
	now := s.clock.Now()
	accessExp := now.Add(AccessTokenTTL)
	refreshExp := now.Add(RefreshTokenTTL)

	accessToken, err := s.sign(userID, email, sessionID, kindAccess, now, accessExp)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := s.sign(userID, email, sessionID, kindRefresh, now, refreshExp)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// VerifyAccessはアクセストークンを検証する。
// 署名が正しくてもtyp=refreshなら拒否する。
func (s *Service) VerifyAccess(tokenString string) (*AccessPayload, error) {
	claims, err := s.verify(tokenString, kindAccess)
	if err != nil {
		return nil, err
	}
	return &AccessPayload{
		UserID:    claims.Subject,
		Email:     claims.Email,
		SessionID: claims.SessionID,
	}, nil
}

// VerifyRefreshはリフレッシュトークンを検証する。
// 署名が正しくてもtyp=accessなら拒否する。
func (s *Service) VerifyRefresh(tokenString string) (*RefreshPayload, error) {
	claims, err := s.verify(tokenString, kindRefresh)
	if err != nil {
		return nil, err
	}
	return &RefreshPayload{
		UserID:    claims.Subject,
		Email:     claims.Email,
		SessionID: claims.SessionID,
	}, nil
}

func (s *Service) sign(userID string, email string, sessionID string, kind string, issuedAt time.Time, expiresAt time.Time) (string, error) {
	claims := credentialClaims{
		Email:     email,
		SessionID: sessionID,
		Kind:      kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// jtiで毎回別のトークン文字列になる。
			// これが無いと同時刻のローテーションが同じ値を再発行してしまう。
			ID:        uuid.NewString(),
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// パース・署名・期限・種別のどれが失敗してもErrInvalidToken。
// ここからpanicやパースエラーを外に漏らさない。
func (s *Service) verify(tokenString string, kind string) (*credentialClaims, error) {
	claims := &credentialClaims{}

	tok, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || tok == nil || !tok.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Kind != kind {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// ExtractBearerTokenはAuthorizationヘッダからトークン部分を取り出す。
// 「Bearer 」のスキームのみ受け付け、残りはトリムせずそのまま返す。
// 「Bearer 」単体は空文字のトークンとして扱う（okはtrue）。
func ExtractBearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	return header[len(bearerPrefix):], true
}

// NewSessionIDは暗号学的にランダムな固定長のIDを返す。
// ユーザー情報や時刻からは導出しない。
func NewSessionID() string {
	return uuid.NewString()
}
