package dispatch

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/nao1215/chatnotify/internal/model"
	"github.com/nao1215/chatnotify/internal/push"
	"github.com/nao1215/chatnotify/internal/store"
)

// fakeStore はテスト用のインメモリstore.Reader。
// 各フィールドのエラーを設定すると対応するクエリが失敗する。
type fakeStore struct {
	conversations map[string]model.Conversation
	profiles      map[string]model.Profile
	preferences   map[string]model.Preference
	tokens        map[string][]model.PushToken

	conversationErr error
	profileErr      error
	preferenceErr   error
	tokensErr       error

	// blockTokens がtrueの場合、トークン取得はコンテキストが終わるまで待つ。
	blockTokens bool

	mu          sync.Mutex
	tokenCalls  int
	profileHits int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		conversations: map[string]model.Conversation{},
		profiles:      map[string]model.Profile{},
		preferences:   map[string]model.Preference{},
		tokens:        map[string][]model.PushToken{},
	}
}

func (f *fakeStore) Conversation(_ context.Context, id string) (model.Conversation, error) {
	if f.conversationErr != nil {
		return model.Conversation{}, f.conversationErr
	}
	c, ok := f.conversations[id]
	if !ok {
		return model.Conversation{}, store.ErrNotFound
	}
	return c, nil
}

func (f *fakeStore) Profile(_ context.Context, userID string) (model.Profile, error) {
	f.mu.Lock()
	f.profileHits++
	f.mu.Unlock()

	if f.profileErr != nil {
		return model.Profile{}, f.profileErr
	}
	p, ok := f.profiles[userID]
	if !ok {
		return model.Profile{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) Preference(_ context.Context, userID string) (model.Preference, error) {
	if f.preferenceErr != nil {
		return model.Preference{}, f.preferenceErr
	}
	p, ok := f.preferences[userID]
	if !ok {
		return model.Preference{}, store.ErrNotFound
	}
	return p, nil
}

func (f *fakeStore) ActivePushTokens(ctx context.Context, userID string) ([]model.PushToken, error) {
	f.mu.Lock()
	f.tokenCalls++
	f.mu.Unlock()

	if f.blockTokens {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.tokensErr != nil {
		return nil, f.tokensErr
	}
	var active []model.PushToken
	for _, t := range f.tokens[userID] {
		if t.IsActive {
			active = append(active, t)
		}
	}
	return active, nil
}

// fakeGateway はテスト用のGateway。送信されたバッチを記録する。
type fakeGateway struct {
	receipt json.RawMessage
	err     error

	mu      sync.Mutex
	batches [][]push.Message
}

func (g *fakeGateway) Send(_ context.Context, messages []push.Message) (json.RawMessage, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.batches = append(g.batches, messages)
	if g.err != nil {
		return nil, g.err
	}
	return g.receipt, nil
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.batches)
}

// fakeNameCache はテスト用のNameCache。
type fakeNameCache struct {
	mu     sync.Mutex
	names  map[string]string
	getErr error
	setErr error
}

func (c *fakeNameCache) GetName(_ context.Context, userID string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return "", false, c.getErr
	}
	name, ok := c.names[userID]
	return name, ok, nil
}

func (c *fakeNameCache) SetName(_ context.Context, userID, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	if c.names == nil {
		c.names = map[string]string{}
	}
	c.names[userID] = name
	return nil
}

func ptr(s string) *string { return &s }

// newScenarioStore は会話c1（u1とu2）と、u2の有効なトークン1件を持つストアを返す。
func newScenarioStore() *fakeStore {
	st := newFakeStore()
	st.conversations["c1"] = model.Conversation{ID: "c1", ParticipantA: "u1", ParticipantB: "u2"}
	st.profiles["u1"] = model.Profile{ID: "u1", DisplayName: ptr("Alice")}
	st.profiles["u2"] = model.Profile{ID: "u2", Email: ptr("bob@example.com")}
	st.preferences["u2"] = model.Preference{UserID: "u2", NotificationsEnabled: true}
	st.tokens["u2"] = []model.PushToken{
		{UserID: "u2", Token: "ExponentPushToken[u2-phone]", DeviceType: model.DeviceTypeIOS, IsActive: true},
	}
	st.tokens["u1"] = []model.PushToken{
		{UserID: "u1", Token: "ExpoPushToken[u1-phone]", DeviceType: model.DeviceTypeAndroid, IsActive: true},
	}
	return st
}
