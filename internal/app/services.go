package app

import (
	"omnichat/internal/ai"
	"omnichat/internal/cache"
	"omnichat/internal/config"
	"omnichat/internal/identity"
	"omnichat/internal/knowledge"
	"omnichat/internal/memory"
	"omnichat/internal/orchestrator"
	"omnichat/internal/platform"
	"omnichat/internal/repo"
	"omnichat/internal/tools"
	"omnichat/internal/worker"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"
	"gorm.io/gorm"
)

// Services holds all application services
type Services struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *cache.Client

	TenantRepo       *repo.TenantRepository
	UserRepo         *repo.UserRepository
	ConversationRepo *repo.ConversationRepository
	MessageRepo      *repo.MessageRepository
	IntegrationRepo  *repo.IntegrationRepository
	EventRepo        *repo.IntegrationEventRepository
	ToolRepo         *repo.ToolRepository
	ExecutionRepo    *repo.ToolExecutionRepository
	MemoryRepo       *repo.MemoryRepository

	KnowledgeService *knowledge.Service
	MemoryService    *memory.Service
	ToolService      *tools.Service
	Router           *ai.Router
	Orchestrator     *orchestrator.Service
	Identity         *identity.Resolver
	PlatformService  *platform.Service
	Sender           *platform.Sender
	Pool             *worker.Pool
}

// NewServices creates a new services container. External clients (database,
// redis, model providers, vector index) are built by the caller, which also
// owns their shutdown.
func NewServices(cfg *config.Config, db *gorm.DB, redisClient *cache.Client, openaiClient *openai.Client, anthropicClient anthropic.Client, index *knowledge.QdrantIndex) *Services {
	// Initialize repositories
	tenantRepo := repo.NewTenantRepository(db)
	userRepo := repo.NewUserRepository(db)
	conversationRepo := repo.NewConversationRepository(db)
	messageRepo := repo.NewMessageRepository(db)
	integrationRepo := repo.NewIntegrationRepository(db)
	eventRepo := repo.NewIntegrationEventRepository(db)
	toolRepo := repo.NewToolRepository(db)
	executionRepo := repo.NewToolExecutionRepository(db)
	memoryRepo := repo.NewMemoryRepository(db)

	// Initialize domain services
	var knowledgeService *knowledge.Service
	if index != nil && openaiClient != nil {
		knowledgeService = knowledge.NewService(knowledge.NewOpenAIEmbedder(openaiClient), index)
	}

	memoryService := memory.NewService(memoryRepo)
	toolService := tools.NewService(toolRepo, executionRepo, redisClient)

	// Model router with every configured provider registered
	router := ai.NewRouter(cfg.DefaultProvider, cfg.DefaultModel)
	if openaiClient != nil {
		router.Register("openai", ai.NewOpenAIProvider(openaiClient))
	}
	if cfg.AnthropicAPIKey != "" {
		router.Register("anthropic", ai.NewAnthropicProvider(anthropicClient))
	}

	orchestratorService := orchestrator.NewService(
		retrieverOrNil(knowledgeService),
		memoryService,
		router,
		toolService,
		messageRepo,
	)

	resolver := identity.NewResolver(integrationRepo, userRepo, conversationRepo)
	platformService := platform.NewService(resolver, orchestratorService, eventRepo)
	sender := platform.NewSender()

	pool := worker.NewPool(worker.Config{}, log.Logger)

	return &Services{
		Config:           cfg,
		DB:               db,
		Redis:            redisClient,
		TenantRepo:       tenantRepo,
		UserRepo:         userRepo,
		ConversationRepo: conversationRepo,
		MessageRepo:      messageRepo,
		IntegrationRepo:  integrationRepo,
		EventRepo:        eventRepo,
		ToolRepo:         toolRepo,
		ExecutionRepo:    executionRepo,
		MemoryRepo:       memoryRepo,
		KnowledgeService: knowledgeService,
		MemoryService:    memoryService,
		ToolService:      toolService,
		Router:           router,
		Orchestrator:     orchestratorService,
		Identity:         resolver,
		PlatformService:  platformService,
		Sender:           sender,
		Pool:             pool,
	}
}

// retrieverOrNil keeps the orchestrator's retriever interface nil when the
// vector index is not configured, so knowledge retrieval is skipped instead
// of panicking on a typed-nil service.
func retrieverOrNil(s *knowledge.Service) orchestrator.Retriever {
	if s == nil {
		return nil
	}
	return s
}
