package bootstrap

import (
	"context"
	"log"

	"mindcare-chat-be/internal/config"
	"mindcare-chat-be/internal/controller"
	"mindcare-chat-be/internal/dataset"
	"mindcare-chat-be/internal/pkg/logger"
	"mindcare-chat-be/internal/repository/implementation"
	"mindcare-chat-be/internal/repository/memory"
	"mindcare-chat-be/internal/service"
	"mindcare-chat-be/internal/storage"
	"mindcare-chat-be/pkg/ai/fallback"
	"mindcare-chat-be/pkg/embedding"
	"mindcare-chat-be/pkg/llm/factory"

	pktNats "mindcare-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController      controller.IChatController
	KnowledgeController controller.IKnowledgeController
	TherapistController controller.ITherapistController
	MemoryController    controller.IMemoryController
	SummaryController   controller.ISummaryController

	// Background services (main.go runs these)
	ConsumerService  service.IConsumerService
	KnowledgeService service.IKnowledgeService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	sessionRepo := implementation.NewChatSessionRepository(db)
	messageRepo := implementation.NewChatMessageRepository(db)
	memoryRepo := implementation.NewMemoryRecordRepository(db)
	therapistRepo := implementation.NewTherapistRepository(db)
	embeddingRepo := implementation.NewDocumentEmbeddingRepository(db)
	turnStates := memory.NewTurnStateRepository()

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI stack
	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	case "gemini":
		embeddingProvider = embedding.NewGeminiProvider(cfg.Keys.GoogleGemini)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	default:
		embeddingProvider = embedding.NewLocalProvider()
		log.Printf("[INFO] Using Embedding Provider: LOCAL")
	}

	providers := factory.NewProviderChain([]factory.ChainEntry{
		{Type: "openai", APIKey: cfg.Keys.OpenAI, BaseURL: cfg.Ai.OpenAIBaseURL, Model: cfg.Ai.OpenAIModel},
		{Type: "ollama", BaseURL: cfg.Ai.OllamaBaseURL, Model: cfg.Ai.OllamaModel},
		{Type: "huggingface", APIKey: cfg.Keys.HuggingFace, Model: cfg.Ai.HuggingFaceModel},
	})
	log.Printf("[INFO] Provider fallback chain length: %d", len(providers))

	aiLogger := logger.NewIsolatedLogger("logs/ai_fallback.log")
	engine := fallback.NewEngine(providers, aiLogger)

	// 4. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		natsPub = nil
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	var transcripts *storage.TranscriptStorage
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis, transcript cache disabled: %v", err)
	} else {
		transcripts = storage.NewTranscriptStorage(rdb, sysLogger)
	}

	// 5. Services
	knowledgeService := service.NewKnowledgeService(
		dataset.KnowledgeEntries(),
		embeddingProvider,
		embeddingRepo,
		sysLogger,
	)
	recommendationService := service.NewRecommendationService(
		therapistRepo,
		embeddingProvider,
		embeddingRepo,
		sysLogger,
	)
	memoryService := service.NewMemoryService(
		memoryRepo,
		messageRepo,
		engine,
		sysLogger,
	)
	summaryService := service.NewSummaryService(
		sessionRepo,
		messageRepo,
		engine,
		sysLogger,
	)

	publisherService := service.NewPublisherService(cfg.Keys.MemoryCaptureTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Keys.MemoryCaptureTopic,
		memoryService,
		sysLogger,
	)

	chatService := service.NewChatService(
		sessionRepo,
		messageRepo,
		turnStates,
		engine,
		knowledgeService,
		memoryService,
		recommendationService,
		transcripts,
		publisherService,
		natsPub,
		sysLogger,
		cfg.Ai.TokenBudget,
		cfg.Ai.DefaultLocale,
	)

	// 6. Controllers
	return &Container{
		ChatController:      controller.NewChatController(chatService),
		KnowledgeController: controller.NewKnowledgeController(knowledgeService),
		TherapistController: controller.NewTherapistController(recommendationService),
		MemoryController:    controller.NewMemoryController(memoryService),
		SummaryController:   controller.NewSummaryController(summaryService),

		ConsumerService:  consumerService,
		KnowledgeService: knowledgeService,
	}
}
