package memory

import (
	"context"
	"sync"
	"testing"

	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateReturnsSameActiveConversation(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository()

	first, err := repo.GetOrCreate(ctx, "1.1.1.1", "jonathan", "2024-01-01")
	require.NoError(t, err)
	second, err := repo.GetOrCreate(ctx, "1.1.1.1", "jonathan", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, entity.ConversationActive, first.Status)

	other, err := repo.GetOrCreate(ctx, "1.1.1.1", "pablo", "2024-01-01")
	require.NoError(t, err)
	assert.NotEqual(t, first.Id, other.Id)
}

func TestConcurrentGetOrCreateYieldsOneActive(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository()

	ids := make([]uuid.UUID, 32)
	var wg sync.WaitGroup
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			conv, err := repo.GetOrCreate(ctx, "ip", "pablo", "2024-01-01")
			if assert.NoError(t, err) {
				ids[i] = conv.Id
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Len(t, repo.All(), 1)
}

func TestIncrementUsageIsAtomic(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository()
	conv, err := repo.GetOrCreate(ctx, "ip", "jonathan", "2024-01-01")
	require.NoError(t, err)

	const n = 200
	results := make(chan int, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := repo.IncrementUsage(ctx, conv.Id)
			assert.NoError(t, err)
			results <- v
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[int]bool, n)
	for v := range results {
		assert.False(t, seen[v], "value %d returned twice", v)
		seen[v] = true
	}
	assert.Len(t, seen, n)

	total, err := repo.TotalUsage(ctx, "ip", "jonathan", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, n, total)
}

func TestIncrementUnknownConversation(t *testing.T) {
	_, err := NewConversationRepository().IncrementUsage(context.Background(), uuid.New())
	assert.ErrorIs(t, err, contract.ErrConversationNotFound)

	_, err = NewConversationRepository().AppendMessage(context.Background(), uuid.New(), entity.RoleUser, "hi")
	assert.ErrorIs(t, err, contract.ErrConversationNotFound)
}

func TestSoftDeletePreservesUsageAndStartsNewConversation(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository()

	old, err := repo.GetOrCreate(ctx, "ip", "jonathan", "2024-01-01")
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := repo.IncrementUsage(ctx, old.Id)
		require.NoError(t, err)
	}
	_, err = repo.AppendMessage(ctx, old.Id, entity.RoleUser, "hello")
	require.NoError(t, err)

	deleted, err := repo.SoftDelete(ctx, "ip", "jonathan", "2024-01-01")
	require.NoError(t, err)
	assert.True(t, deleted)

	again, err := repo.SoftDelete(ctx, "ip", "jonathan", "2024-01-01")
	require.NoError(t, err)
	assert.False(t, again)

	msgs, err := repo.ActiveMessages(ctx, "ip", "jonathan", "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	fresh, err := repo.GetOrCreate(ctx, "ip", "jonathan", "2024-01-01")
	require.NoError(t, err)
	assert.NotEqual(t, old.Id, fresh.Id)
	assert.Equal(t, 0, fresh.MessagesUsed)

	_, err = repo.IncrementUsage(ctx, fresh.Id)
	require.NoError(t, err)

	total, err := repo.TotalUsage(ctx, "ip", "jonathan", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 5, total)

	var statuses []entity.ConversationStatus
	for _, c := range repo.All() {
		statuses = append(statuses, c.Status)
		if c.Id == old.Id {
			assert.Equal(t, 4, c.MessagesUsed)
			assert.NotNil(t, c.DeletedAt)
		}
	}
	assert.ElementsMatch(t, []entity.ConversationStatus{entity.ConversationDeleted, entity.ConversationActive}, statuses)
}

func TestActiveMessagesKeepsAppendOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository()
	conv, err := repo.GetOrCreate(ctx, "ip", "pablo", "2024-01-01")
	require.NoError(t, err)

	contents := []string{"q1", "a1", "q2", "a2"}
	for i, c := range contents {
		role := entity.RoleUser
		if i%2 == 1 {
			role = entity.RoleAssistant
		}
		_, err := repo.AppendMessage(ctx, conv.Id, role, c)
		require.NoError(t, err)
	}

	msgs, err := repo.ActiveMessages(ctx, "ip", "pablo", "2024-01-01")
	require.NoError(t, err)
	require.Len(t, msgs, 4)
	for i, m := range msgs {
		assert.Equal(t, contents[i], m.Content)
	}
	assert.Equal(t, entity.RoleAssistant, msgs[3].Role)

	none, err := repo.ActiveMessages(ctx, "ip", "pablo", "2024-01-02")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUsageIsKeyedByDate(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository()
	conv, err := repo.GetOrCreate(ctx, "ip", "jonathan", "2024-01-01")
	require.NoError(t, err)
	_, err = repo.IncrementUsage(ctx, conv.Id)
	require.NoError(t, err)

	total, err := repo.TotalUsage(ctx, "ip", "jonathan", "2024-01-02")
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestSoftDeleteBefore(t *testing.T) {
	ctx := context.Background()
	repo := NewConversationRepository()

	for _, date := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		conv, err := repo.GetOrCreate(ctx, "ip", "jonathan", date)
		require.NoError(t, err)
		_, err = repo.IncrementUsage(ctx, conv.Id)
		require.NoError(t, err)
	}

	n, err := repo.SoftDeleteBefore(ctx, "2024-01-03")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	active, err := repo.FindActive(ctx, "ip", "jonathan", "2024-01-03")
	require.NoError(t, err)
	require.NotNil(t, active)

	gone, err := repo.FindActive(ctx, "ip", "jonathan", "2024-01-01")
	require.NoError(t, err)
	assert.Nil(t, gone)

	total, err := repo.TotalUsage(ctx, "ip", "jonathan", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
