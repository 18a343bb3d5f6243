package output

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"go.uber.org/zap"

	"github.com/chrisdamba/retailiq/internal/models"
)

// KafkaOutput publishes every message synchronously. Campaign and reorder
// events are keyed by customer or product so one entity stays on one
// partition.
type KafkaOutput struct {
	producer sarama.SyncProducer
	log      *zap.Logger
}

func NewKafkaOutput(cfg models.KafkaConfig, log *zap.Logger) (*KafkaOutput, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // required by SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	if cfg.SessionTimeoutMs > 0 {
		saramaConfig.Consumer.Group.Session.Timeout = time.Duration(cfg.SessionTimeoutMs) * time.Millisecond
	} else {
		saramaConfig.Consumer.Group.Session.Timeout = 45 * time.Second
	}

	brokerList := strings.Split(cfg.BrokerList, ",")
	producer, err := sarama.NewSyncProducer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	k := NewKafkaOutputWithProducer(producer, log)
	k.log.Info("kafka producer created", zap.Strings("brokers", brokerList))
	return k, nil
}

func NewKafkaOutputWithProducer(producer sarama.SyncProducer, log *zap.Logger) *KafkaOutput {
	if log == nil {
		log = zap.NewNop()
	}
	return &KafkaOutput{producer: producer, log: log}
}

func (k *KafkaOutput) WriteMessage(topic string, msg []byte) error {
	if k.producer == nil {
		return fmt.Errorf("kafka producer is not initialized")
	}

	message := &sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
	}
	if key := messageKey(msg); key != "" {
		message.Key = sarama.StringEncoder(key)
	}

	partition, offset, err := k.producer.SendMessage(message)
	if err != nil {
		k.log.Error("failed to send message", zap.String("topic", topic), zap.Error(err))
		return err
	}
	k.log.Debug("message sent",
		zap.String("topic", topic),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset),
	)
	return nil
}

func (k *KafkaOutput) Close() error {
	if k.producer != nil {
		return k.producer.Close()
	}
	return nil
}

func messageKey(msg []byte) string {
	var keys struct {
		CustomerID string `json:"customerId"`
		ProductID  string `json:"productId"`
	}
	if err := json.Unmarshal(msg, &keys); err != nil {
		return ""
	}
	if keys.CustomerID != "" {
		return keys.CustomerID
	}
	return keys.ProductID
}
