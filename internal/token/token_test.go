package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// =====================
// テスト用の固定時計
// =====================

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func newTestService(now time.Time) (*Service, *fakeClock) {
	clock := &fakeClock{now: now}
	return NewService("test-secret", clock), clock
}

var baseTime = time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

// =====================
// IssuePair
// =====================

func TestService_IssuePair_ExpirySetFromNow(t *testing.T) {
	svc, _ := newTestService(baseTime)

	pair, err := svc.IssuePair("user-1", "user@test.com", "sess-1")
	assert.NoError(t, err)

	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	// 期限は発行時点のnow基準で確定する
	assert.Equal(t, baseTime.Add(AccessTokenTTL), pair.AccessExpiresAt)
	assert.Equal(t, baseTime.Add(RefreshTokenTTL), pair.RefreshExpiresAt)
	assert.True(t, pair.AccessExpiresAt.Before(pair.RefreshExpiresAt))
}

func TestService_IssuePair_PayloadRoundTrip(t *testing.T) {
	svc, _ := newTestService(baseTime)

	pair, err := svc.IssuePair("user-1", "user@test.com", "sess-1")
	assert.NoError(t, err)

	access, err := svc.VerifyAccess(pair.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", access.UserID)
	assert.Equal(t, "user@test.com", access.Email)
	assert.Equal(t, "sess-1", access.SessionID)

	refresh, err := svc.VerifyRefresh(pair.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, "user-1", refresh.UserID)
	assert.Equal(t, "user@test.com", refresh.Email)
	assert.Equal(t, "sess-1", refresh.SessionID)
}

// 同時刻・同セッションでも発行のたびに別のトークン文字列になる
func TestService_IssuePair_UniquePerIssue(t *testing.T) {
	svc, _ := newTestService(baseTime)

	first, err := svc.IssuePair("user-1", "user@test.com", "sess-1")
	assert.NoError(t, err)

	second, err := svc.IssuePair("user-1", "user@test.com", "sess-1")
	assert.NoError(t, err)

	assert.NotEqual(t, first.AccessToken, second.AccessToken)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
}

// =====================
// 種別違いの拒否（両方向）
// =====================

func TestService_Verify_KindMismatch(t *testing.T) {
	svc, _ := newTestService(baseTime)

	pair, err := svc.IssuePair("user-1", "user@test.com", "sess-1")
	assert.NoError(t, err)

	// refreshをaccessとして検証 => 拒否
	payload, err := svc.VerifyAccess(pair.RefreshToken)
	assert.Nil(t, payload)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// accessをrefreshとして検証 => 拒否
	refresh, err := svc.VerifyRefresh(pair.AccessToken)
	assert.Nil(t, refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// =====================
// 期限切れ
// =====================

func TestService_Verify_Expired(t *testing.T) {
	svc, clock := newTestService(baseTime)

	pair, err := svc.IssuePair("user-1", "user@test.com", "sess-1")
	assert.NoError(t, err)

	// accessだけ切れてrefreshはまだ有効な時刻へ進める
	clock.now = baseTime.Add(AccessTokenTTL + time.Minute)

	_, err = svc.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.VerifyRefresh(pair.RefreshToken)
	assert.NoError(t, err)

	// refreshの期限も過ぎれば両方ダメ
	clock.now = baseTime.Add(RefreshTokenTTL + time.Minute)

	_, err = svc.VerifyRefresh(pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// =====================
// 改ざん・ゴミ入力は全部ErrInvalidToken
// =====================

func TestService_Verify_Garbage(t *testing.T) {
	svc, _ := newTestService(baseTime)

	cases := []string{
		"",
		"not-a-jwt",
		"a.b.c",
		"eyJhbGciOiJub25lIn0.eyJzdWIiOiJ1c2VyLTEifQ.",
	}

	for _, raw := range cases {
		_, err := svc.VerifyAccess(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "input=%q", raw)

		_, err = svc.VerifyRefresh(raw)
		assert.ErrorIs(t, err, ErrInvalidToken, "input=%q", raw)
	}
}

func TestService_Verify_WrongSecret(t *testing.T) {
	issuer, _ := newTestService(baseTime)

	pair, err := issuer.IssuePair("user-1", "user@test.com", "sess-1")
	assert.NoError(t, err)

	other := NewService("another-secret", &fakeClock{now: baseTime})

	_, err = other.VerifyAccess(pair.AccessToken)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_Verify_Tampered(t *testing.T) {
	svc, _ := newTestService(baseTime)

	pair, err := svc.IssuePair("user-1", "user@test.com", "sess-1")
	assert.NoError(t, err)

	// 末尾1文字を壊す（署名検証で落ちる）
	raw := pair.AccessToken
	last := raw[len(raw)-1]
	replace := byte('A')
	if last == 'A' {
		replace = 'B'
	}
	tampered := raw[:len(raw)-1] + string(replace)

	_, err = svc.VerifyAccess(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// =====================
// ExtractBearerToken
// =====================

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name   string
		header string
		want   string
		wantOK bool
	}{
		{"通常", "Bearer abc.def.ghi", "abc.def.ghi", true},
		{"スキームのみ", "Bearer ", "", true},
		{"前後の空白はそのまま返す", "Bearer   abc  ", "  abc  ", true},
		{"空ヘッダ", "", "", false},
		{"小文字bearerは拒否", "bearer abc", "", false},
		{"スペース無し", "Bearerabc", "", false},
		{"別スキーム", "Basic abc", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ExtractBearerToken(tc.header)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

// =====================
// NewSessionID
// =====================

func TestNewSessionID(t *testing.T) {
	a := NewSessionID()
	b := NewSessionID()

	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
