package unitofwork

import (
	"context"
	"log"
	"os"
	"sync"
	"testing"

	"portfolio-chat-be/internal/entity"
	"portfolio-chat-be/internal/repository/migration"
	"portfolio-chat-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresRepositories(t *testing.T) {
	if err := godotenv.Load("../../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, migration.Migrate(gormDB))

	ctx := context.Background()
	uow := NewRepositoryFactory(gormDB).NewUnitOfWork(ctx)
	conversations := uow.ConversationRepository()

	identity := "it-" + uuid.NewString()[:8]
	date := "2024-01-01"

	t.Run("concurrent increments are not lost", func(t *testing.T) {
		conv, err := conversations.GetOrCreate(ctx, identity, "jonathan", date)
		require.NoError(t, err)

		const n = 25
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := conversations.IncrementUsage(ctx, conv.Id)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		total, err := conversations.TotalUsage(ctx, identity, "jonathan", date)
		require.NoError(t, err)
		assert.Equal(t, n, total)
	})

	t.Run("concurrent get or create keeps one active row", func(t *testing.T) {
		ids := make(chan uuid.UUID, 10)
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				conv, err := conversations.GetOrCreate(ctx, identity, "pablo", date)
				if assert.NoError(t, err) {
					ids <- conv.Id
				}
			}()
		}
		wg.Wait()
		close(ids)

		var first uuid.UUID
		for id := range ids {
			if first == uuid.Nil {
				first = id
			}
			assert.Equal(t, first, id)
		}
	})

	t.Run("soft delete keeps quota", func(t *testing.T) {
		conv, err := conversations.GetOrCreate(ctx, identity, "jonathan", date)
		require.NoError(t, err)
		_, err = conversations.AppendMessage(ctx, conv.Id, entity.RoleUser, "hello")
		require.NoError(t, err)

		deleted, err := conversations.SoftDelete(ctx, identity, "jonathan", date)
		require.NoError(t, err)
		assert.True(t, deleted)

		fresh, err := conversations.GetOrCreate(ctx, identity, "jonathan", date)
		require.NoError(t, err)
		assert.NotEqual(t, conv.Id, fresh.Id)

		msgs, err := conversations.ActiveMessages(ctx, identity, "jonathan", date)
		require.NoError(t, err)
		assert.Empty(t, msgs)

		total, err := conversations.TotalUsage(ctx, identity, "jonathan", date)
		require.NoError(t, err)
		assert.Equal(t, 25, total)
	})

	t.Run("knowledge upsert by source id", func(t *testing.T) {
		repo := uow.KnowledgeRepository()
		sourceID := "it-" + uuid.NewString()
		t.Cleanup(func() {
			gormDB.Exec("DELETE FROM knowledge_entries WHERE source_id = ?", sourceID)
		})
		require.NoError(t, repo.Upsert(ctx, &entity.KnowledgeEntry{SourceId: sourceID, Scope: "pablo", Sections: []string{"a"}, Embedding: []float32{1, 0, 0}}))
		require.NoError(t, repo.Upsert(ctx, &entity.KnowledgeEntry{SourceId: sourceID, Scope: "pablo", Sections: []string{"b"}, Embedding: []float32{0, 1, 0}}))

		entries, err := repo.FindAll(ctx)
		require.NoError(t, err)
		var found *entity.KnowledgeEntry
		for _, e := range entries {
			if e.SourceId == sourceID {
				found = e
			}
		}
		require.NotNil(t, found)
		assert.Equal(t, []string{"b"}, found.Sections)
		assert.Equal(t, []float32{0, 1, 0}, found.Embedding)
	})
}
