package nonce

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	svc := NewService(NewMemoryStore(), time.Minute)

	token, err := svc.Issue(context.Background(), 7, "sess-1")
	require.NoError(t, err)
	assert.Len(t, token, 32)

	ok, err := svc.Verify(context.Background(), 7, "sess-1", token)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVerifyConsumesToken(t *testing.T) {
	svc := NewService(NewMemoryStore(), time.Minute)

	token, err := svc.Issue(context.Background(), 7, "sess-1")
	require.NoError(t, err)

	ok, err := svc.Verify(context.Background(), 7, "sess-1", token)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.Verify(context.Background(), 7, "sess-1", token)
	require.NoError(t, err)
	assert.False(t, ok, "a token must never verify twice")
}

func TestVerifyWrongToken(t *testing.T) {
	svc := NewService(NewMemoryStore(), time.Minute)

	_, err := svc.Issue(context.Background(), 7, "sess-1")
	require.NoError(t, err)

	ok, err := svc.Verify(context.Background(), 7, "sess-1", "forged")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyIsSessionScoped(t *testing.T) {
	svc := NewService(NewMemoryStore(), time.Minute)

	token, err := svc.Issue(context.Background(), 7, "sess-1")
	require.NoError(t, err)

	ok, err := svc.Verify(context.Background(), 7, "sess-2", token)
	require.NoError(t, err)
	assert.False(t, ok, "tokens from another session must not verify")
}

func TestIssueReplacesPreviousToken(t *testing.T) {
	svc := NewService(NewMemoryStore(), time.Minute)

	first, err := svc.Issue(context.Background(), 7, "sess-1")
	require.NoError(t, err)

	second, err := svc.Issue(context.Background(), 7, "sess-1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	ok, err := svc.Verify(context.Background(), 7, "sess-1", first)
	require.NoError(t, err)
	assert.False(t, ok, "issuing a new token invalidates the old one")
}

func TestExpiredTokenDoesNotVerify(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, time.Minute)

	require.NoError(t, store.Save(context.Background(), "paynow_nonce:7:sess-1", "tok", -time.Second))

	ok, err := svc.Verify(context.Background(), 7, "sess-1", "tok")
	require.NoError(t, err)
	assert.False(t, ok)
}
