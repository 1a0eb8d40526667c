package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthValidator_ValidateLogin(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateLogin(ctx, "user@test.com", "password"))
	assert.NoError(t, v.ValidateLogin(ctx, "  user@test.com  ", "password"))

	assert.ErrorIs(t, v.ValidateLogin(ctx, "", "password"), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "user@test.com", ""), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "not-an-email", "password"), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "user@test", "password"), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateLogin(ctx, "user @test.com", "password"), ErrInvalidInput)
}

func TestAuthValidator_ValidateRefresh(t *testing.T) {
	v := NewAuthValidator()
	ctx := context.Background()

	assert.NoError(t, v.ValidateRefresh(ctx, "some-token"))
	assert.ErrorIs(t, v.ValidateRefresh(ctx, ""), ErrInvalidInput)
	assert.ErrorIs(t, v.ValidateRefresh(ctx, "   "), ErrInvalidInput)
}
