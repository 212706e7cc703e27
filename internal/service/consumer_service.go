package service

import (
	"context"
	"encoding/json"

	"mindcare-chat-be/internal/dto"
	"mindcare-chat-be/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains the async memory-capture topic. Capture runs off
// the turn's hot path so a slow summarizer never delays the reply.
type consumerService struct {
	pubSub        *gochannel.GoChannel
	topicName     string
	memoryService IMemoryService
	logger        logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	memoryService IMemoryService,
	log logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:        pubSub,
		topicName:     topicName,
		memoryService: memoryService,
		logger:        log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.CaptureMemoryMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.logger.Error("ConsumerService", "Failed to unmarshal capture message", map[string]interface{}{"error": err.Error()})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	record, err := cs.memoryService.CaptureFromMessage(ctx, payload)
	if err != nil {
		cs.logger.Error("ConsumerService", "Memory capture failed", map[string]interface{}{
			"session_id": payload.ChatSessionId,
			"error":      err.Error(),
		})
		msg.Nack() // Retriable
		return
	}

	if record != nil {
		cs.logger.Info("ConsumerService", "Memory captured", map[string]interface{}{
			"session_id": payload.ChatSessionId,
			"keywords":   record.Keywords,
		})
	}
	msg.Ack()
}
