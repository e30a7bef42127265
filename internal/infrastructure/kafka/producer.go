package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/config"
	"github.com/yokitheyo/styletransfer/internal/dto"
	"github.com/yokitheyo/styletransfer/internal/retry"
)

type Producer struct {
	client *wbfkafka.Producer
	topic  string
}

func NewProducer(cfg *config.KafkaConfig) *Producer {
	client := wbfkafka.NewProducer(cfg.Brokers, cfg.Topic)
	zlog.Logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Msg("Kafka producer initialized (wbf)")
	return &Producer{
		client: client,
		topic:  cfg.Topic,
	}
}

// PublishTransferTask hands an async transfer to the worker. The transfer id
// is the message key so retries of the same transfer land on one partition.
func (p *Producer) PublishTransferTask(ctx context.Context, transferID string) error {
	task := dto.TransferTask{TransferID: transferID}
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	if err := p.client.SendWithRetry(ctx, retry.QueueStrategy, []byte(transferID), data); err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("transfer_id", transferID).
			Str("topic", p.topic).
			Msg("Failed to send Kafka message with retry")
		return fmt.Errorf("send task %s: %w", transferID, err)
	}

	zlog.Logger.Info().
		Str("transfer_id", transferID).
		Str("topic", p.topic).
		Msg("Transfer task sent to Kafka")
	return nil
}

func (p *Producer) Close() error {
	if err := p.client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to close Kafka producer")
		return err
	}
	zlog.Logger.Info().Msg("Kafka producer closed successfully")
	return nil
}
