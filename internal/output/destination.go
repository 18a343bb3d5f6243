package output

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/chrisdamba/retailiq/internal/models"
)

type OutputDestination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

// NewDestination builds the destination selected by output.format.
func NewDestination(cfg *models.Config, log *zap.Logger) (OutputDestination, error) {
	switch cfg.Output.Format {
	case "", "console":
		return NewConsoleOutput(nil), nil
	case "json":
		return NewJSONOutput(cfg.Output.Path, cfg.Output.Folder), nil
	case "csv":
		return NewCSVOutput(cfg.Output.Path, cfg.Output.Folder), nil
	case "parquet":
		return NewParquetOutput(cfg.Output, log)
	case "kafka":
		return NewKafkaOutput(cfg.Kafka, log)
	default:
		return nil, fmt.Errorf("unsupported output format: %s", cfg.Output.Format)
	}
}

// partition decodes msg and returns it with its hourly partition path, taken
// from the epoch-second "timestamp" field in UTC.
func partition(msg []byte) (map[string]interface{}, string, error) {
	var event map[string]interface{}
	if err := json.Unmarshal(msg, &event); err != nil {
		return nil, "", err
	}

	timestamp, ok := event["timestamp"].(float64)
	if !ok {
		return nil, "", fmt.Errorf("invalid timestamp")
	}

	eventTime := time.Unix(int64(timestamp), 0).UTC()
	year, month, day := eventTime.Date()
	hour := eventTime.Hour()

	return event, fmt.Sprintf("year=%d/month=%02d/day=%02d/hour=%02d", year, month, day, hour), nil
}

func partitionDir(basePath, folder, topic, partitionPath string) string {
	return filepath.Join(basePath, folder, topic, filepath.FromSlash(partitionPath))
}
