package push

import (
	"context"
	"errors"
	"testing"

	"github.com/brnno-tech/brnno-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTokenStore struct{ mock.Mock }

func (m *mockTokenStore) GetFCMToken(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockTokenStore) SetFCMToken(ctx context.Context, userID, token string) error {
	return m.Called(ctx, userID, token).Error(0)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) SendPush(ctx context.Context, token, title, body string, data map[string]string) (string, error) {
	args := m.Called(ctx, token, title, body, data)
	return args.String(0), args.Error(1)
}

func TestRegisterToken(t *testing.T) {
	tokens := &mockTokenStore{}
	tokens.On("SetFCMToken", mock.Anything, "u1", "fcm-abc").Return(nil)

	b := NewBridge(tokens, nil)
	require.NoError(t, b.RegisterToken(context.Background(), "u1", "fcm-abc"))
	tokens.AssertExpectations(t)
}

func TestRegisterToken_EmptyRejected(t *testing.T) {
	b := NewBridge(&mockTokenStore{}, nil)
	err := b.RegisterToken(context.Background(), "u1", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestSend_UnconfiguredBackend(t *testing.T) {
	b := NewBridge(&mockTokenStore{}, nil)
	_, err := b.Send(context.Background(), "fcm-abc", "t", "b", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnavailable))
}

func TestSendToUser_ResolvesToken(t *testing.T) {
	tokens := &mockTokenStore{}
	tokens.On("GetFCMToken", mock.Anything, "u1").Return("fcm-abc", nil)
	sender := &mockSender{}
	sender.On("SendPush", mock.Anything, "fcm-abc", "Title", "Body", map[string]string{"k": "v"}).
		Return("msg-1", nil)

	b := NewBridge(tokens, sender)
	messageID, err := b.SendToUser(context.Background(), "u1", "Title", "Body", map[string]string{"k": "v"})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", messageID)
	sender.AssertExpectations(t)
}

func TestSendToUser_NoRegisteredToken(t *testing.T) {
	tokens := &mockTokenStore{}
	tokens.On("GetFCMToken", mock.Anything, "u1").Return("", domain.ErrNotFound)

	b := NewBridge(tokens, &mockSender{})
	_, err := b.SendToUser(context.Background(), "u1", "t", "b", nil)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestDeliver_SwallowsFailures(t *testing.T) {
	tokens := &mockTokenStore{}
	tokens.On("GetFCMToken", mock.Anything, "u1").Return("fcm-abc", nil)
	sender := &mockSender{}
	sender.On("SendPush", mock.Anything, "fcm-abc", "t", "b", mock.Anything).
		Return("", errors.New("endpoint disabled"))

	b := NewBridge(tokens, sender)
	// Must not panic or surface the error in any way.
	b.Deliver(context.Background(), "u1", "t", "b", nil)
	sender.AssertExpectations(t)
}

func TestDeliver_MissingTokenIsQuiet(t *testing.T) {
	tokens := &mockTokenStore{}
	tokens.On("GetFCMToken", mock.Anything, "u1").Return("", domain.ErrNotFound)

	b := NewBridge(tokens, nil)
	b.Deliver(context.Background(), "u1", "t", "b", nil)
}
