package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"
	"unicode"

	"mindcare-chat-be/internal/dto"
	"mindcare-chat-be/internal/entity"
	"mindcare-chat-be/internal/pkg/apperr"
	"mindcare-chat-be/internal/pkg/logger"
	"mindcare-chat-be/internal/repository/contract"
	"mindcare-chat-be/internal/repository/memory"
	"mindcare-chat-be/internal/repository/specification"
	"mindcare-chat-be/internal/storage"
	"mindcare-chat-be/pkg/events"
	"mindcare-chat-be/pkg/llm"
	"mindcare-chat-be/pkg/locale"
	"mindcare-chat-be/pkg/utils"

	pktNats "mindcare-chat-be/pkg/nats"

	"github.com/google/uuid"
)

const (
	// historyWindow bounds how many persisted messages feed the reply prompt.
	historyWindow = 30

	// contextTimeout bounds the best-effort context gathering phase.
	contextTimeout = 2 * time.Second

	defaultReplyTokens = 600
)

type IChatService interface {
	// SendChat runs one complete turn and returns both committed halves.
	SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error)

	// StreamChat runs one turn as an event stream. The returned channel
	// opens with exactly one session_established event and closes after
	// exactly one terminal event, complete or error. Failures before the
	// session is resolved are returned as an error instead.
	StreamChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (<-chan dto.StreamEvent, error)

	GetSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetSessionResponse, error)
	GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error)
}

type chatService struct {
	sessionRepo contract.ChatSessionRepository
	messageRepo contract.ChatMessageRepository
	turnStates  *memory.TurnStateRepository

	replySource     ReplySource
	knowledge       IKnowledgeService
	memories        IMemoryService
	recommendations IRecommendationService
	transcripts     *storage.TranscriptStorage

	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher

	logger logger.ILogger

	tokenBudget   int
	defaultLocale string
}

func NewChatService(
	sessionRepo contract.ChatSessionRepository,
	messageRepo contract.ChatMessageRepository,
	turnStates *memory.TurnStateRepository,
	replySource ReplySource,
	knowledge IKnowledgeService,
	memories IMemoryService,
	recommendations IRecommendationService,
	transcripts *storage.TranscriptStorage,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	log logger.ILogger,
	tokenBudget int,
	defaultLocale string,
) IChatService {
	if defaultLocale == "" {
		defaultLocale = locale.EnUS
	}
	return &chatService{
		sessionRepo:      sessionRepo,
		messageRepo:      messageRepo,
		turnStates:       turnStates,
		replySource:      replySource,
		knowledge:        knowledge,
		memories:         memories,
		recommendations:  recommendations,
		transcripts:      transcripts,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           log,
		tokenBudget:      tokenBudget,
		defaultLocale:    defaultLocale,
	}
}

// turnContext carries everything resolved during the pre-flight phase of a
// turn: the owning session, the authoritative locale and the next sequence
// index to assign.
type turnContext struct {
	session    *entity.ChatSession
	locale     string
	newSession bool
	nextSeq    int
	message    string
	userId     uuid.UUID
}

func (cs *chatService) SendChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	turn, err := cs.beginTurn(ctx, userId, request)
	if err != nil {
		return nil, err
	}
	defer cs.turnStates.End(turn.session.Id)

	userMsg, err := cs.persistUserMessage(ctx, turn)
	if err != nil {
		return nil, err
	}

	contextLine, candidates := cs.gatherContext(ctx, turn)
	history := cs.buildHistory(ctx, turn, contextLine)
	reply := cs.replySource.Generate(ctx, history, turn.locale, defaultReplyTokens)

	assistantMsg, err := cs.persistAssistantMessage(ctx, turn, reply)
	if err != nil {
		return nil, err
	}

	cs.finishTurn(turn, userMsg, assistantMsg)

	return &dto.SendChatResponse{
		ChatSessionId:   turn.session.Id,
		Locale:          turn.locale,
		Sent:            messageToDTO(userMsg),
		Reply:           messageToDTO(assistantMsg),
		Recommendations: candidates,
	}, nil
}

func (cs *chatService) StreamChat(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (<-chan dto.StreamEvent, error) {
	turn, err := cs.beginTurn(ctx, userId, request)
	if err != nil {
		return nil, err
	}

	out := make(chan dto.StreamEvent)
	go func() {
		defer close(out)
		defer cs.turnStates.End(turn.session.Id)

		sessionId := turn.session.Id
		select {
		case out <- dto.StreamEvent{
			Event:         dto.EventSessionEstablished,
			ChatSessionId: &sessionId,
			Locale:        turn.locale,
		}:
		case <-ctx.Done():
			return
		}

		userMsg, err := cs.persistUserMessage(ctx, turn)
		if err != nil {
			cs.emitError(ctx, out, err)
			return
		}

		contextLine, candidates := cs.gatherContext(ctx, turn)
		history := cs.buildHistory(ctx, turn, contextLine)

		var b strings.Builder
		for frag := range cs.replySource.Stream(ctx, history, turn.locale, defaultReplyTokens) {
			if frag.Err != nil {
				cs.emitError(ctx, out, frag.Err)
				return
			}
			if frag.Restart {
				// Everything buffered so far came from a dead provider
				// attempt; the retry replays the reply from scratch.
				b.Reset()
				continue
			}
			b.WriteString(frag.Delta)
			select {
			case out <- dto.StreamEvent{Event: dto.EventToken, Delta: frag.Delta}:
			case <-ctx.Done():
				return
			}
		}
		if ctx.Err() != nil {
			// Consumer went away mid-stream; nothing left to deliver.
			return
		}

		reply := b.String()
		if utils.IsBlank(reply) {
			reply = locale.GenericReply(turn.locale)
		}

		assistantMsg, err := cs.persistAssistantMessage(ctx, turn, reply)
		if err != nil {
			cs.emitError(ctx, out, err)
			return
		}

		cs.finishTurn(turn, userMsg, assistantMsg)

		seq := assistantMsg.SequenceIndex
		select {
		case out <- dto.StreamEvent{
			Event:           dto.EventComplete,
			ChatSessionId:   &sessionId,
			SequenceIndex:   &seq,
			Content:         reply,
			Recommendations: candidates,
		}:
		case <-ctx.Done():
		}
	}()

	return out, nil
}

// beginTurn validates the request, resolves or creates the session, fixes
// the authoritative locale and reserves the turn slot.
func (cs *chatService) beginTurn(ctx context.Context, userId uuid.UUID, request *dto.SendChatRequest) (*turnContext, error) {
	if request == nil || utils.IsBlank(request.Message) {
		return nil, apperr.New(apperr.CodeValidationFailed, "message must not be empty")
	}
	if cs.tokenBudget > 0 && estimateTokens(request.Message) > cs.tokenBudget {
		return nil, apperr.New(apperr.CodeTokenQuotaExceeded, "message exceeds the per-turn token budget")
	}

	var session *entity.ChatSession
	newSession := false
	hint := request.Locale

	if request.ChatSessionId != nil {
		found, err := cs.sessionRepo.FindOne(ctx,
			specification.ByID{ID: *request.ChatSessionId},
			specification.UserOwnedBy{UserID: userId},
		)
		if err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, "failed to load session", err)
		}
		if found == nil {
			return nil, apperr.New(apperr.CodeSessionNotFound, "chat session not found")
		}
		session = found
		if hint == "" {
			hint = session.Locale
		}
	}
	if hint == "" {
		hint = cs.defaultLocale
	}

	resolved := locale.Detect(request.Message, hint)

	if session == nil {
		newSession = true
		session = &entity.ChatSession{
			Id:          uuid.New(),
			UserId:      userId,
			TherapistId: request.TherapistId,
			State:       entity.SessionStateActive,
			Locale:      resolved,
			StartedAt:   time.Now(),
		}
		if err := cs.sessionRepo.Create(ctx, session); err != nil {
			return nil, apperr.Wrap(apperr.CodeInternal, "failed to create session", err)
		}
		if cs.eventPublisher != nil {
			evt := events.NewSessionOpened(session.Id, userId, resolved)
			if err := cs.eventPublisher.Publish(context.Background(), evt); err != nil {
				cs.logger.Warn("ChatService", "Failed to publish session opened event", map[string]interface{}{"error": err.Error()})
			}
		}
	}

	lastSeq, err := cs.messageRepo.MaxSequenceIndex(ctx, session.Id)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to resolve sequence index", err)
	}

	if !cs.turnStates.Begin(session.Id, lastSeq) {
		return nil, apperr.New(apperr.CodeValidationFailed, "another turn is still in progress for this session")
	}

	return &turnContext{
		session:    session,
		locale:     resolved,
		newSession: newSession,
		nextSeq:    lastSeq + 1,
		message:    request.Message,
		userId:     userId,
	}, nil
}

func (cs *chatService) persistUserMessage(ctx context.Context, turn *turnContext) (*entity.ChatMessage, error) {
	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: turn.session.Id,
		Role:          entity.RoleUser,
		Content:       turn.message,
		SequenceIndex: turn.nextSeq,
		Locale:        turn.locale,
		CreatedAt:     time.Now(),
	}
	if err := cs.messageRepo.Create(ctx, msg); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to persist user message", err)
	}
	if cs.transcripts != nil {
		cs.transcripts.PersistMessage(ctx, msg)
	}
	return msg, nil
}

func (cs *chatService) persistAssistantMessage(ctx context.Context, turn *turnContext, reply string) (*entity.ChatMessage, error) {
	msg := &entity.ChatMessage{
		Id:            uuid.New(),
		ChatSessionId: turn.session.Id,
		Role:          entity.RoleAssistant,
		Content:       reply,
		SequenceIndex: turn.nextSeq + 1,
		Locale:        turn.locale,
		CreatedAt:     time.Now(),
	}
	if err := cs.messageRepo.Create(ctx, msg); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to persist assistant message", err)
	}
	if cs.transcripts != nil {
		cs.transcripts.PersistMessage(ctx, msg)
	}

	now := time.Now()
	turn.session.UpdatedAt = &now
	turn.session.Locale = turn.locale
	if err := cs.sessionRepo.Update(ctx, turn.session); err != nil {
		cs.logger.Warn("ChatService", "Failed to touch session after turn", map[string]interface{}{
			"session_id": turn.session.Id,
			"error":      err.Error(),
		})
	}
	return msg, nil
}

// buildHistory assembles the reply prompt: the bounded persisted history,
// best-effort context lines and the current user message last.
func (cs *chatService) buildHistory(ctx context.Context, turn *turnContext, contextLine string) []llm.Message {
	var history []llm.Message

	if contextLine != "" {
		history = append(history, llm.Message{Role: entity.RoleSystem, Content: contextLine})
	}

	for _, m := range cs.recentMessages(ctx, turn.session.Id) {
		// The current user message is already persisted; replay everything
		// before it and append the live copy below.
		if m.SequenceIndex >= turn.nextSeq {
			continue
		}
		if m.Role != entity.RoleUser && m.Role != entity.RoleAssistant {
			continue
		}
		history = append(history, llm.Message{Role: m.Role, Content: m.Content})
	}

	history = append(history, llm.Message{Role: entity.RoleUser, Content: turn.message})
	return history
}

// gatherContext collects knowledge guidance, memory recall and therapist
// candidates concurrently. Every lookup is best effort and shares a short
// deadline; a turn never fails because context gathering did.
func (cs *chatService) gatherContext(ctx context.Context, turn *turnContext) (string, []dto.TherapistRecommendation) {
	gatherCtx, cancel := context.WithTimeout(ctx, contextTimeout)
	defer cancel()

	var guidance []string
	var recall string
	var candidates []dto.TherapistRecommendation

	var wg sync.WaitGroup
	if cs.knowledge != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			guidance = cs.knowledge.GuidanceFor(gatherCtx, turn.message, turn.locale)
		}()
	}
	if cs.memories != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recall = cs.memories.RecallHint(gatherCtx, turn.userId, turn.locale)
		}()
	}
	if cs.recommendations != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recs, err := cs.recommendations.Recommend(gatherCtx, turn.message, turn.locale, defaultRecommendLimit)
			if err != nil {
				cs.logger.Warn("ChatService", "Therapist candidate lookup failed", map[string]interface{}{
					"session_id": turn.session.Id,
					"error":      err.Error(),
				})
				return
			}
			candidates = recs
		}()
	}
	wg.Wait()

	var lines []string
	if len(guidance) > 0 {
		if locale.IsChinese(turn.locale) {
			lines = append(lines, "可以参考的应对建议:")
		} else {
			lines = append(lines, "Guidance you may draw on:")
		}
		lines = append(lines, guidance...)
	}
	if recall != "" {
		lines = append(lines, recall)
	}
	return strings.Join(lines, "\n"), candidates
}

func (cs *chatService) recentMessages(ctx context.Context, sessionId uuid.UUID) []*entity.ChatMessage {
	if cs.transcripts != nil {
		if cached := cs.transcripts.FetchTranscript(ctx, sessionId); len(cached) > 0 {
			if len(cached) > historyWindow {
				cached = cached[len(cached)-historyWindow:]
			}
			return cached
		}
	}

	messages, err := cs.messageRepo.FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "sequence_index", Desc: true},
		specification.Pagination{Limit: historyWindow},
	)
	if err != nil {
		cs.logger.Warn("ChatService", "Failed to load history window", map[string]interface{}{
			"session_id": sessionId,
			"error":      err.Error(),
		})
		return nil
	}

	// Newest-first from the query; replay oldest-first.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages
}

// finishTurn runs the post-commit side effects: async memory capture, the
// transcript snapshot and the turn-completed bus event. All best effort.
func (cs *chatService) finishTurn(turn *turnContext, userMsg, assistantMsg *entity.ChatMessage) {
	ctx := context.Background()

	if cs.publisherService != nil {
		payload, err := json.Marshal(dto.CaptureMemoryMessage{
			ChatSessionId: turn.session.Id,
			UserId:        turn.userId,
			Locale:        turn.locale,
			Content:       turn.message,
		})
		if err == nil {
			if err := cs.publisherService.Publish(ctx, payload); err != nil {
				cs.logger.Warn("ChatService", "Failed to publish memory capture request", map[string]interface{}{
					"session_id": turn.session.Id,
					"error":      err.Error(),
				})
			}
		}
	}

	if cs.transcripts != nil {
		if all, err := cs.messageRepo.FindAll(ctx,
			specification.ByChatSessionID{ChatSessionID: turn.session.Id},
			specification.OrderBy{Field: "sequence_index", Desc: false},
		); err == nil {
			cs.transcripts.PersistTranscript(ctx, turn.session.Id, all)
		}
	}

	if cs.eventPublisher != nil {
		evt := events.NewTurnCompleted(turn.session.Id, turn.userId, turn.locale, userMsg.SequenceIndex, assistantMsg.SequenceIndex)
		if err := cs.eventPublisher.Publish(ctx, evt); err != nil {
			cs.logger.Warn("ChatService", "Failed to publish turn completed event", map[string]interface{}{
				"session_id": turn.session.Id,
				"error":      err.Error(),
			})
		}
	}
}

func (cs *chatService) emitError(ctx context.Context, out chan<- dto.StreamEvent, err error) {
	cs.logger.Error("ChatService", "Turn failed mid-stream", map[string]interface{}{"error": err.Error()})

	event := dto.StreamEvent{
		Event:   dto.EventError,
		Code:    apperr.CodeOf(err),
		Message: err.Error(),
	}
	select {
	case out <- event:
	case <-ctx.Done():
	}
}

func (cs *chatService) GetSessions(ctx context.Context, userId uuid.UUID) ([]*dto.GetSessionResponse, error) {
	sessions, err := cs.sessionRepo.FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load sessions", err)
	}

	out := make([]*dto.GetSessionResponse, len(sessions))
	for i, s := range sessions {
		out[i] = &dto.GetSessionResponse{
			Id:          s.Id,
			TherapistId: s.TherapistId,
			State:       s.State,
			Locale:      s.Locale,
			StartedAt:   s.StartedAt,
			UpdatedAt:   s.UpdatedAt,
		}
	}
	return out, nil
}

func (cs *chatService) GetChatHistory(ctx context.Context, userId uuid.UUID, sessionId uuid.UUID) ([]*dto.GetChatHistoryResponse, error) {
	session, err := cs.sessionRepo.FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load session", err)
	}
	if session == nil {
		return nil, apperr.New(apperr.CodeSessionNotFound, "chat session not found")
	}

	messages, err := cs.messageRepo.FindAll(ctx,
		specification.ByChatSessionID{ChatSessionID: sessionId},
		specification.OrderBy{Field: "sequence_index", Desc: false},
	)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load messages", err)
	}

	out := make([]*dto.GetChatHistoryResponse, len(messages))
	for i, m := range messages {
		out[i] = &dto.GetChatHistoryResponse{
			Id:            m.Id,
			Role:          m.Role,
			Content:       m.Content,
			SequenceIndex: m.SequenceIndex,
			Locale:        m.Locale,
			CreatedAt:     m.CreatedAt,
		}
	}
	return out, nil
}

func messageToDTO(m *entity.ChatMessage) *dto.SendChatResponseChat {
	if m == nil {
		return nil
	}
	return &dto.SendChatResponseChat{
		Id:            m.Id,
		Role:          m.Role,
		Content:       m.Content,
		SequenceIndex: m.SequenceIndex,
		CreatedAt:     m.CreatedAt,
	}
}

// estimateTokens approximates provider token usage: CJK counts one token per
// rune, everything else roughly one per four runes.
func estimateTokens(text string) int {
	var cjk, other int
	for _, r := range text {
		if unicode.Is(unicode.Han, r) || unicode.In(r, unicode.Hiragana, unicode.Katakana, unicode.Hangul) {
			cjk++
		} else if !unicode.IsSpace(r) {
			other++
		}
	}
	return cjk + (other+3)/4
}
