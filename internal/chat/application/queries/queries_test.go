package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/huddle/internal/chat/domain"
)

type fakeMessages struct {
	messages []*domain.Message
	err      error
}

func (f *fakeMessages) Append(_ context.Context, msg *domain.Message) error {
	msg.AssignID(int64(len(f.messages) + 1))
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeMessages) List(context.Context) ([]*domain.Message, error) {
	return f.messages, f.err
}

type fakeParticipants struct {
	participants []*domain.Participant
}

func (f *fakeParticipants) GetOrCreate(_ context.Context, p *domain.Participant) (*domain.Participant, error) {
	f.participants = append(f.participants, p)
	return p, nil
}

func (f *fakeParticipants) FindByEmail(_ context.Context, email string) (*domain.Participant, error) {
	for _, p := range f.participants {
		if p.Email() == email {
			return p, nil
		}
	}
	return nil, domain.ErrParticipantNotFound
}

func (f *fakeParticipants) List(context.Context) ([]*domain.Participant, error) {
	return f.participants, nil
}

func (f *fakeParticipants) Count(context.Context) (int, error) {
	return len(f.participants), nil
}

var (
	alice = domain.RehydrateParticipant(uuid.New(), "Alice Johnson", "alice@email.com", time.Now())
	bob   = domain.RehydrateParticipant(uuid.New(), "Bob Smith", "bob@email.com", time.Now())
)

func conversation(t *testing.T) *fakeMessages {
	t.Helper()
	store := &fakeMessages{}
	for _, line := range []struct {
		author *domain.Participant
		text   string
	}{
		{alice, "let's have a meeting"},
		{bob, "Tuesday afternoon works"},
		{alice, "see you then"},
	} {
		msg, err := domain.NewMessage(line.author, line.text, time.Now())
		require.NoError(t, err)
		require.NoError(t, store.Append(context.Background(), msg))
	}
	return store
}

func TestListMessagesHandler(t *testing.T) {
	handler := NewListMessagesHandler(conversation(t))

	all, err := handler.Handle(context.Background(), ListMessagesQuery{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Alice Johnson", all[0].Name)
	assert.Equal(t, "bob@email.com", all[1].Email)

	recent, err := handler.Handle(context.Background(), ListMessagesQuery{Limit: 2})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, int64(2), recent[0].ID)
	assert.Equal(t, "see you then", recent[1].Text)
}

func TestListMessagesHandler_Error(t *testing.T) {
	storeErr := errors.New("database is locked")
	handler := NewListMessagesHandler(&fakeMessages{err: storeErr})

	_, err := handler.Handle(context.Background(), ListMessagesQuery{})
	assert.ErrorIs(t, err, storeErr)
}

func TestListParticipantsHandler(t *testing.T) {
	handler := NewListParticipantsHandler(&fakeParticipants{participants: []*domain.Participant{alice, bob}})

	got, err := handler.Handle(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, alice.ID(), got[0].ID)
	assert.Equal(t, "Bob Smith", got[1].Name)
}

func TestConversationLoader_Load(t *testing.T) {
	loader := NewConversationLoader(conversation(t))

	got, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "alice@email.com", got[0].Author.Email)
	assert.Equal(t, "Tuesday afternoon works", got[1].Text)
	assert.Equal(t, got[0].Author, got[2].Author)
}
