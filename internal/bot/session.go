package bot

import (
	"sync"

	"github.com/KopralProject/Telegram/internal/cloudflare"
)

// Step is the current position of a user inside a multi-turn flow.
type Step int

const (
	StepZoneForList Step = iota
	StepZoneForAdd
	StepWildcardFragment
	StepRecordType
	StepContentA
	StepContentCNAME
	StepProxyChoice
	StepZoneForDelete
	StepRecordIDForDelete
	StepZoneForUpdate
	StepRecordIDForUpdate
	StepUpdateAction
	StepNewContentA
	StepNewContentCNAME
)

// Session is the per-user conversation state. Fields are filled in
// incrementally as the flow advances; Records is the snapshot listed for
// delete/update selection and stays authoritative for the rest of that flow.
type Session struct {
	Step       Step
	Domain     string
	ZoneID     string
	Fragment   string
	RecordType string
	Content    string
	RecordID   string
	Records    []cloudflare.Record
}

// findRecord resolves an id against the session's snapshot, not a fresh fetch.
func (s *Session) findRecord(id string) *cloudflare.Record {
	for i := range s.Records {
		if s.Records[i].ID == id {
			return &s.Records[i]
		}
	}
	return nil
}

// SessionStore keeps at most one Session per user id. Starting a new flow
// silently overwrites any stale session for that user. Sessions live in
// memory only and are lost on restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[int64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[int64]*Session)}
}

func (st *SessionStore) Get(userID int64) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[userID]
	return s, ok
}

func (st *SessionStore) Put(userID int64, s *Session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[userID] = s
}

func (st *SessionStore) Delete(userID int64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}
