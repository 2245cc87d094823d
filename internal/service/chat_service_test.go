package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"portfolio-chat-be/internal/dto"
	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/repository/contract"
	"portfolio-chat-be/internal/repository/memory"
	"portfolio-chat-be/pkg/agent"
	"portfolio-chat-be/pkg/agent/classifier"
	"portfolio-chat-be/pkg/agent/generator"
	"portfolio-chat-be/pkg/credential"
	"portfolio-chat-be/pkg/events"
	"portfolio-chat-be/pkg/ratelimit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clientIP = "203.0.113.7"

type fakeRunner struct {
	mu    sync.Mutex
	calls []agent.Request
	run   func(ctx context.Context, req agent.Request, emit generator.Emit) (agent.Outcome, error)
}

func (f *fakeRunner) Run(ctx context.Context, req agent.Request, emit generator.Emit) (agent.Outcome, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	return f.run(ctx, req, emit)
}

func (f *fakeRunner) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// answering streams reply token by token as an in-domain answer.
func answering(reply ...string) *fakeRunner {
	return &fakeRunner{run: func(ctx context.Context, req agent.Request, emit generator.Emit) (agent.Outcome, error) {
		out := agent.Outcome{Label: classifier.InDomain, Language: "en", Path: []agent.State{agent.StateClassify, agent.StateRetrieve, agent.StateGenerate}}
		for _, tok := range reply {
			if err := emit(tok); err != nil {
				return out, err
			}
			out.Text += tok
		}
		return out, nil
	}}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type harness struct {
	store       *memory.Store
	credentials *credential.Manager
	limiter     *ratelimit.Limiter
	publisher   *recordingPublisher
	chat        IChatService
	convs       IConversationService
}

func newHarness(t *testing.T, runner TurnRunner, limit int, policy ratelimit.Policy) *harness {
	t.Helper()
	store := memory.NewStore(nil)
	factory := memory.NewRepositoryFactory(store)
	creds, err := credential.NewManager("test-secret")
	require.NoError(t, err)
	limiter := ratelimit.NewLimiter(store.Conversations, limit, policy)
	pub := &recordingPublisher{}
	log := logger.NewNopLogger()
	return &harness{
		store:       store,
		credentials: creds,
		limiter:     limiter,
		publisher:   pub,
		chat:        NewChatService(factory, runner, limiter, creds, pub, []string{"jonathan", "pablo"}, log),
		convs:       NewConversationService(factory, limiter, creds, log),
	}
}

func collectTokens(tokens *[]string) generator.Emit {
	return func(tok string) error {
		*tokens = append(*tokens, tok)
		return nil
	}
}

func (h *harness) turn(t *testing.T, message, scope, token string) (*PreparedChat, []string) {
	t.Helper()
	prepared, err := h.chat.Prepare(context.Background(), clientIP, &dto.ChatRequest{Message: message, Scope: scope}, token)
	require.NoError(t, err)
	var tokens []string
	require.NoError(t, h.chat.Stream(context.Background(), prepared, collectTokens(&tokens)))
	return prepared, tokens
}

func TestChatTurnPersistsAndChargesUpfront(t *testing.T) {
	h := newHarness(t, answering("Jona", "than ", "uses Go."), 10, ratelimit.PolicyUpfront)

	prepared, tokens := h.turn(t, "  What does Jonathan use?\x00 ", "jonathan", "")
	assert.Equal(t, []string{"Jona", "than ", "uses Go."}, tokens)
	assert.Equal(t, "What does Jonathan use?", prepared.Message)
	assert.Equal(t, 1, prepared.Used)
	assert.Equal(t, 10, prepared.Limit)

	claims := h.credentials.Verify(prepared.Token)
	require.NotNil(t, claims)
	assert.Equal(t, clientIP, claims.IP)
	assert.Equal(t, "jonathan", claims.Scope)
	assert.Equal(t, 1, claims.MessagesUsed)
	assert.Equal(t, credential.NextReset(time.Now()), prepared.ExpiresAt)

	msgs, err := h.store.Conversations.ActiveMessages(context.Background(), clientIP, "jonathan", prepared.Date)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, entity.RoleUser, msgs[0].Role)
	assert.Equal(t, "What does Jonathan use?", msgs[0].Content)
	assert.Equal(t, entity.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "Jonathan uses Go.", msgs[1].Content)

	require.Len(t, h.publisher.events, 1)
	payload := h.publisher.events[0].Payload()
	assert.Equal(t, events.TypeChatCompleted, h.publisher.events[0].EventType())
	assert.Equal(t, "IN_DOMAIN", payload["label"])
	assert.NotEqual(t, clientIP, payload["identity_hash"])
}

func TestHistoryIsPassedToTheNextTurn(t *testing.T) {
	runner := answering("ok")
	h := newHarness(t, runner, 10, ratelimit.PolicyUpfront)

	first, _ := h.turn(t, "first", "global", "")
	h.turn(t, "second", "global", first.Token)

	require.Equal(t, 2, runner.Calls())
	second := runner.calls[1]
	require.Len(t, second.History, 2)
	assert.Equal(t, "first", second.History[0].Content)
	assert.Equal(t, "user", second.History[0].Role)
	assert.Equal(t, "ok", second.History[1].Content)
	assert.Equal(t, "assistant", second.History[1].Role)
}

func TestExhaustedQuotaNeverReachesThePipeline(t *testing.T) {
	runner := answering("ok")
	h := newHarness(t, runner, 10, ratelimit.PolicyUpfront)

	token := ""
	for i := 0; i < 10; i++ {
		p, _ := h.turn(t, "hi", "global", token)
		token = p.Token
	}
	require.Equal(t, 10, runner.Calls())

	_, err := h.chat.Prepare(context.Background(), clientIP, &dto.ChatRequest{Message: "one more", Scope: "global"}, token)
	var limitErr *dto.LimitExceededError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, 10, limitErr.Used)
	assert.Equal(t, 10, limitErr.Limit)
	assert.Equal(t, credential.NextReset(time.Now()), limitErr.ResetAt)
	assert.Equal(t, 10, runner.Calls())
}

func TestForgedOrForeignCredentialDoesNotLowerUsage(t *testing.T) {
	h := newHarness(t, answering("ok"), 2, ratelimit.PolicyUpfront)
	h.turn(t, "a", "global", "")
	h.turn(t, "b", "global", "")

	foreign, _, err := h.credentials.Issue("198.51.100.1", "global", 0, h.limiter.Today())
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", foreign} {
		_, err := h.chat.Prepare(context.Background(), clientIP, &dto.ChatRequest{Message: "c", Scope: "global"}, token)
		var limitErr *dto.LimitExceededError
		require.ErrorAs(t, err, &limitErr, "token %q", token)
		assert.Equal(t, 2, limitErr.Used)
	}
}

func TestSoftDeleteStartsNewConversationButKeepsQuota(t *testing.T) {
	h := newHarness(t, answering("ok"), 10, ratelimit.PolicyUpfront)

	first, _ := h.turn(t, "hello", "global", "")
	second, _ := h.turn(t, "again", "global", first.Token)
	assert.Equal(t, first.ConversationId, second.ConversationId)

	res, err := h.convs.Delete(context.Background(), clientIP, second.Token)
	require.NoError(t, err)
	assert.Equal(t, "global", res.Scope)

	third, _ := h.turn(t, "fresh start", "global", second.Token)
	assert.NotEqual(t, first.ConversationId, third.ConversationId)
	assert.Equal(t, 3, third.Used)

	total, err := h.store.Conversations.TotalUsage(context.Background(), clientIP, "global", third.Date)
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	history, err := h.convs.History(context.Background(), clientIP, "global", third.Token)
	require.NoError(t, err)
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "fresh start", history.Messages[0].Content)
	assert.Equal(t, 3, history.MessagesUsed)
}

func TestChargePolicyOnFailedGeneration(t *testing.T) {
	failing := func() *fakeRunner {
		return &fakeRunner{run: func(ctx context.Context, req agent.Request, emit generator.Emit) (agent.Outcome, error) {
			_ = emit("partial ")
			return agent.Outcome{Label: classifier.InDomain, Text: "partial "}, errors.New("upstream 502")
		}}
	}

	tests := map[string]struct {
		policy       ratelimit.Policy
		wantUsed     int
		wantCredUsed int
	}{
		"upfront charges anyway":      {ratelimit.PolicyUpfront, 1, 1},
		"on_success never charges it": {ratelimit.PolicyOnSuccess, 0, 0},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, failing(), 10, tc.policy)
			prepared, err := h.chat.Prepare(context.Background(), clientIP, &dto.ChatRequest{Message: "hi", Scope: "global"}, "")
			require.NoError(t, err)

			var tokens []string
			err = h.chat.Stream(context.Background(), prepared, collectTokens(&tokens))
			require.Error(t, err)

			total, err := h.store.Conversations.TotalUsage(context.Background(), clientIP, "global", prepared.Date)
			require.NoError(t, err)
			assert.Equal(t, tc.wantUsed, total)
			assert.Equal(t, tc.wantCredUsed, h.credentials.Verify(prepared.Token).MessagesUsed)

			msgs, err := h.store.Conversations.ActiveMessages(context.Background(), clientIP, "global", prepared.Date)
			require.NoError(t, err)
			require.Len(t, msgs, 2)
			assert.Equal(t, "partial ", msgs[1].Content)
		})
	}
}

func TestOnSuccessChargesCompletedTurn(t *testing.T) {
	h := newHarness(t, answering("fine"), 10, ratelimit.PolicyOnSuccess)
	prepared, _ := h.turn(t, "hi", "global", "")
	assert.Equal(t, 0, prepared.Used)

	total, err := h.store.Conversations.TotalUsage(context.Background(), clientIP, "global", prepared.Date)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCancelledStreamPersistsPartialText(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{run: func(ctx context.Context, req agent.Request, emit generator.Emit) (agent.Outcome, error) {
		_ = emit("half an ")
		cancel()
		return agent.Outcome{Label: classifier.InDomain, Text: "half an "}, ctx.Err()
	}}
	h := newHarness(t, runner, 10, ratelimit.PolicyUpfront)

	prepared, err := h.chat.Prepare(ctx, clientIP, &dto.ChatRequest{Message: "tell me", Scope: "pablo"}, "")
	require.NoError(t, err)
	var tokens []string
	err = h.chat.Stream(ctx, prepared, collectTokens(&tokens))
	require.ErrorIs(t, err, context.Canceled)

	msgs, err := h.store.Conversations.ActiveMessages(context.Background(), clientIP, "pablo", prepared.Date)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "half an ", msgs[1].Content)
}

func TestPrepareRejectsBadInput(t *testing.T) {
	runner := answering("ok")
	h := newHarness(t, runner, 10, ratelimit.PolicyUpfront)

	_, err := h.chat.Prepare(context.Background(), clientIP, &dto.ChatRequest{Message: " \x01\x02 ", Scope: "global"}, "")
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = h.chat.Prepare(context.Background(), clientIP, &dto.ChatRequest{Message: "hi", Scope: "marketing"}, "")
	assert.ErrorIs(t, err, ErrInvalidScope)

	assert.Empty(t, h.store.Conversations.All())
	assert.Equal(t, 0, runner.Calls())
}

func TestDeleteConversationErrors(t *testing.T) {
	h := newHarness(t, answering("ok"), 10, ratelimit.PolicyUpfront)

	_, err := h.convs.Delete(context.Background(), clientIP, "")
	assert.ErrorIs(t, err, ErrNoSession)

	_, err = h.convs.Delete(context.Background(), clientIP, "not-a-jwt")
	assert.ErrorIs(t, err, ErrNoSession)

	other, _, err := h.credentials.Issue("198.51.100.1", "global", 1, h.limiter.Today())
	require.NoError(t, err)
	_, err = h.convs.Delete(context.Background(), clientIP, other)
	assert.ErrorIs(t, err, ErrIdentityMismatch)

	mine, _, err := h.credentials.Issue(clientIP, "global", 0, h.limiter.Today())
	require.NoError(t, err)
	_, err = h.convs.Delete(context.Background(), clientIP, mine)
	assert.ErrorIs(t, err, contract.ErrConversationNotFound)
}

func TestSanitizeMessage(t *testing.T) {
	tests := map[string]struct {
		in   string
		want string
	}{
		"trims":           {"  hi  ", "hi"},
		"keeps newlines":  {"a\nb\tc\r\n", "a\nb\tc"},
		"strips controls": {"a\x00b\x1bc\x7fd\u0085e", "abcde"},
		"only controls":   {"\x00\x01", ""},
		"keeps non-latin": {"¿Qué tal? 你好", "¿Qué tal? 你好"},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, SanitizeMessage(tc.in))
		})
	}

	long := make([]rune, MaxMessageRunes+50)
	for i := range long {
		long[i] = 'é'
	}
	assert.Len(t, []rune(SanitizeMessage(string(long))), MaxMessageRunes)
}
