package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KopralProject/Telegram/internal/cloudflare"
)

func TestSessionStore_OnePerUser(t *testing.T) {
	store := NewSessionStore()

	_, ok := store.Get(1)
	assert.False(t, ok)

	store.Put(1, &Session{Step: StepZoneForAdd})
	store.Put(2, &Session{Step: StepZoneForDelete})

	s1, ok := store.Get(1)
	require.True(t, ok)
	assert.Equal(t, StepZoneForAdd, s1.Step)

	// A new Put for the same user replaces the old session.
	store.Put(1, &Session{Step: StepZoneForList})
	s1, _ = store.Get(1)
	assert.Equal(t, StepZoneForList, s1.Step)

	store.Delete(1)
	_, ok = store.Get(1)
	assert.False(t, ok)
	_, ok = store.Get(2)
	assert.True(t, ok, "other users are unaffected")
}

func TestSession_FindRecord(t *testing.T) {
	s := &Session{Records: []cloudflare.Record{
		{ID: "rec-1", Name: "*.dev.example.com"},
		{ID: "rec-2", Name: "*.staging.example.com"},
	}}

	require.NotNil(t, s.findRecord("rec-2"))
	assert.Equal(t, "*.staging.example.com", s.findRecord("rec-2").Name)
	assert.Nil(t, s.findRecord("rec-3"))
}
