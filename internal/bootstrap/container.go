package bootstrap

import (
	"context"
	"fmt"
	"time"

	"portfolio-chat-be/internal/config"
	"portfolio-chat-be/internal/constant"
	"portfolio-chat-be/internal/controller"
	"portfolio-chat-be/internal/pkg/logger"
	"portfolio-chat-be/internal/pkg/mailer"
	"portfolio-chat-be/internal/repository/implementation"
	"portfolio-chat-be/internal/repository/memory"
	"portfolio-chat-be/internal/repository/unitofwork"
	"portfolio-chat-be/internal/service"
	"portfolio-chat-be/pkg/agent"
	"portfolio-chat-be/pkg/agent/classifier"
	"portfolio-chat-be/pkg/agent/generator"
	"portfolio-chat-be/pkg/agent/responder"
	"portfolio-chat-be/pkg/agent/retriever"
	"portfolio-chat-be/pkg/credential"
	"portfolio-chat-be/pkg/embedding"
	"portfolio-chat-be/pkg/events"
	"portfolio-chat-be/pkg/knowledge"
	"portfolio-chat-be/pkg/llm/factory"
	"portfolio-chat-be/pkg/metrics"
	"portfolio-chat-be/pkg/prompt"
	"portfolio-chat-be/pkg/ratelimit"

	pktNats "portfolio-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	Logger *logger.ZapLogger

	// Controllers
	ChatController         controller.IChatController
	ConversationController controller.IConversationController
	ContactController      controller.IContactController
	SystemController       controller.ISystemController

	// Background Services (Exposed for main.go to run)
	ConsumerService     service.IConsumerService
	ReloadService       service.IReloadService
	ConversationService service.IConversationService

	closers []func()
}

// storage groups what differs between the postgres and memory drivers.
type storage struct {
	name      string
	factory   unitofwork.RepositoryFactory
	usage     ratelimit.UsageStore
	leads     ratelimit.LeadCounter
	ping      service.Pinger
	knowledge knowledge.Source
}

// NewContainer wires every component. db may be nil when the memory driver is configured.
func NewContainer(ctx context.Context, db *gorm.DB, cfg *config.Config) (*Container, error) {
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	c := &Container{Logger: sysLogger}

	// 1. Providers
	embedder, err := embedding.NewProvider(embeddingConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("embedding provider: %w", err)
	}
	llmProvider, err := factory.NewLLMProvider(factory.ProviderConfig{
		Type:      cfg.Ai.LLMProvider,
		ModelName: cfg.Ai.ChatModel,
		BaseURL:   llmBaseURL(cfg),
		APIKey:    cfg.Ai.APIKey,
		Timeout:   cfg.Ai.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	sysLogger.Info("BOOT", "Providers ready", map[string]interface{}{
		"llm":       cfg.Ai.LLMProvider,
		"model":     cfg.Ai.ChatModel,
		"embedding": cfg.Ai.EmbeddingProvider,
	})

	// 2. Storage
	store, err := newStorage(db, cfg, embedder)
	if err != nil {
		return nil, err
	}

	// 3. Prompts and knowledge
	prompts := prompt.NewStore(service.NewRepositoryPromptSource(store.factory), constant.DefaultPrompts())
	if err := prompts.Load(ctx); err != nil {
		sysLogger.Warn("BOOT", "Prompt load failed, using defaults", map[string]interface{}{"error": err.Error()})
	}
	index := knowledge.NewIndex(store.knowledge, cfg.Knowledge.TopK)
	if err := index.Load(ctx); err != nil {
		sysLogger.Error("BOOT", "Knowledge index load failed", map[string]interface{}{"error": err.Error()})
	}
	metrics.SetKnowledgeEntries(index.Size())

	// 4. Agent
	orchestrator := agent.NewOrchestrator(
		classifier.New(llmProvider, prompts, prompt.ClassifierPrompt, cfg.Ai.ClassifierModel, sysLogger),
		retriever.New(embedder, index, cfg.Knowledge.TopK),
		generator.New(llmProvider, cfg.Ai.ChatModel, cfg.Ai.HistoryTokens, generator.NewTiktokenCounter()),
		responder.New(llmProvider, prompts, cfg.Ai.TranslatorModel, constant.TranslationInstruction, sysLogger),
		prompts,
	)

	// 5. Quotas and credentials
	creds, err := credential.NewManager(cfg.Auth.JWTSecret)
	if err != nil {
		return nil, err
	}
	policy, err := ratelimit.ParsePolicy(cfg.RateLimit.ChargePolicy)
	if err != nil {
		return nil, err
	}
	limiter := ratelimit.NewLimiter(store.usage, cfg.RateLimit.ChatDailyLimit, policy)
	contactQuota := ratelimit.NewContactQuota(store.leads, cfg.RateLimit.EmailDailyLimit)

	// 6. Infrastructure
	rdb := c.connectRedis(ctx, cfg.App.RedisURL)
	publisher := c.connectNats(cfg.App.NatsURL)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NewStdLogger(false, false))
	c.closers = append(c.closers, func() { _ = pubSub.Close() })

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderName,
		cfg.SMTP.OwnerAddrs,
		mailer.RetryPolicy{MaxAttempts: cfg.SMTP.MaxAttempts, InitialBackoff: cfg.SMTP.InitialBackoff},
	)

	// 7. Services
	scopes := cfg.Knowledge.Scopes
	chatService := service.NewChatService(store.factory, orchestrator, limiter, creds, publisher, scopes, sysLogger)
	c.ConversationService = service.NewConversationService(store.factory, limiter, creds, sysLogger)
	contactService := service.NewContactService(
		store.factory,
		contactQuota,
		service.NewPublisherService(pubSub, cfg.App.ContactTopic),
		publisher,
		sysLogger,
	)
	c.ConsumerService = service.NewConsumerService(pubSub, cfg.App.ContactTopic, store.factory, emailService, sysLogger)
	c.ReloadService = service.NewReloadService(index, index, prompts, prompts, rdb, sysLogger)
	healthService := service.NewHealthService(store.name, store.ping, index, prompts)

	// 8. Controllers
	c.ChatController = controller.NewChatController(chatService, cfg.Auth.SecureCookie, sysLogger)
	c.ConversationController = controller.NewConversationController(c.ConversationService)
	c.ContactController = controller.NewContactController(contactService)
	c.SystemController = controller.NewSystemController(healthService, c.ReloadService, cfg.Auth.AdminJWTSecret)

	return c, nil
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	_ = c.Logger.Sync()
}

func newStorage(db *gorm.DB, cfg *config.Config, embedder embedding.EmbeddingProvider) (*storage, error) {
	switch cfg.Database.Driver {
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres driver selected without a database connection")
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		factory := unitofwork.NewRepositoryFactory(db)
		return &storage{
			name:      "postgres",
			factory:   factory,
			usage:     implementation.NewConversationRepository(db),
			leads:     implementation.NewContactLeadRepository(db),
			ping:      sqlDB.PingContext,
			knowledge: service.NewRepositoryKnowledgeSource(factory, cfg.Knowledge.Scopes...),
		}, nil
	case "memory", "":
		mem := memory.NewStore(constant.DefaultPrompts())
		return &storage{
			name:      "memory",
			factory:   memory.NewRepositoryFactory(mem),
			usage:     mem.Conversations,
			leads:     mem.Leads,
			ping:      mem.Conversations.Ping,
			knowledge: knowledge.NewFileSource(cfg.Knowledge.SeedFile, embedder),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Database.Driver)
	}
}

// connectRedis returns nil when Redis is not configured or unreachable; reloads then stay local.
func (c *Container) connectRedis(ctx context.Context, url string) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		c.Logger.Warn("BOOT", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		c.Logger.Warn("BOOT", "Failed to connect to Redis, reloads stay local", map[string]interface{}{"error": err.Error()})
		_ = rdb.Close()
		return nil
	}
	c.closers = append(c.closers, func() { _ = rdb.Close() })
	return rdb
}

func (c *Container) connectNats(url string) events.Publisher {
	if url == "" {
		return events.NopPublisher{}
	}
	pub, err := pktNats.NewPublisher(url, c.Logger)
	if err != nil {
		c.Logger.Warn("BOOT", "Failed to connect to NATS, events disabled", map[string]interface{}{"error": err.Error()})
		return events.NopPublisher{}
	}
	c.closers = append(c.closers, pub.Close)
	return pub
}

func embeddingConfig(cfg *config.Config) embedding.ProviderConfig {
	baseURL := cfg.Ai.EmbeddingBaseURL
	if cfg.Ai.EmbeddingProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	return embedding.ProviderConfig{
		Type:    cfg.Ai.EmbeddingProvider,
		BaseURL: baseURL,
		APIKey:  cfg.Ai.APIKey,
		Model:   cfg.Ai.EmbeddingModel,
		Timeout: cfg.Ai.RequestTimeout,
	}
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.BaseURL
}

// EmbeddingProvider builds the configured embedder for the seed commands.
func EmbeddingProvider(cfg *config.Config) (embedding.EmbeddingProvider, error) {
	return embedding.NewProvider(embeddingConfig(cfg))
}
