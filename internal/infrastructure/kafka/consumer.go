package kafka

import (
	"context"
	"encoding/json"
	"time"

	wbfkafka "github.com/wb-go/wbf/kafka"
	"github.com/wb-go/wbf/zlog"

	"github.com/yokitheyo/styletransfer/internal/config"
	"github.com/yokitheyo/styletransfer/internal/dto"
	"github.com/yokitheyo/styletransfer/internal/retry"
)

type MessageHandler func(ctx context.Context, task *dto.TransferTask) error

type Consumer struct {
	client  *wbfkafka.Consumer
	handler MessageHandler
	topic   string
}

func NewConsumer(cfg *config.KafkaConfig, handler MessageHandler) *Consumer {
	client := wbfkafka.NewConsumer(cfg.Brokers, cfg.Topic, cfg.GroupID)

	zlog.Logger.Info().
		Strs("brokers", cfg.Brokers).
		Str("topic", cfg.Topic).
		Str("group_id", cfg.GroupID).
		Msg("Kafka consumer initialized (wbf)")

	return &Consumer{
		client:  client,
		handler: handler,
		topic:   cfg.Topic,
	}
}

// Start fetches tasks until ctx is cancelled. A message is committed only
// after the handler succeeded. A failed one is logged and skipped: the fetch
// position has already moved on, so kafka hands it out again only after a
// restart or rebalance, and the transfer's failed status in postgres is
// the durable record.
func (c *Consumer) Start(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			zlog.Logger.Info().Msg("Kafka consumer stopped")
			return nil
		}

		msg, err := c.client.FetchWithRetry(ctx, retry.QueueStrategy)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			zlog.Logger.Error().Err(err).Msg("Failed to fetch Kafka message")
			time.Sleep(time.Second)
			continue
		}

		if !c.process(ctx, msg.Value) {
			continue
		}

		if err := c.client.Commit(ctx, msg); err != nil {
			zlog.Logger.Error().Err(err).Msg("Failed to commit message")
		}
	}
}

// process runs the handler for one message and reports whether the message
// should be committed. Undecodable messages are committed so they do not
// block the partition.
func (c *Consumer) process(ctx context.Context, value []byte) bool {
	task, ok := decodeTask(value)
	if !ok {
		return true
	}

	zlog.Logger.Info().Str("transfer_id", task.TransferID).Msg("Received new Kafka task")

	if err := c.handler(ctx, task); err != nil {
		zlog.Logger.Error().Err(err).Str("transfer_id", task.TransferID).Msg("Task processing failed")
		return false
	}

	zlog.Logger.Info().Str("transfer_id", task.TransferID).Msg("Task processed")
	return true
}

func decodeTask(value []byte) (*dto.TransferTask, bool) {
	var task dto.TransferTask
	if err := json.Unmarshal(value, &task); err != nil {
		zlog.Logger.Error().Err(err).Bytes("msg", value).Msg("Failed to unmarshal message")
		return nil, false
	}
	if task.TransferID == "" {
		zlog.Logger.Error().Bytes("msg", value).Msg("Invalid task: empty transfer_id")
		return nil, false
	}
	return &task, true
}

func (c *Consumer) Close() error {
	if err := c.client.Close(); err != nil {
		zlog.Logger.Error().Err(err).Msg("Failed to close Kafka consumer")
		return err
	}
	zlog.Logger.Info().Msg("Kafka consumer closed successfully")
	return nil
}
