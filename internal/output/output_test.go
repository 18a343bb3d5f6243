package output

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"

	"github.com/chrisdamba/retailiq/internal/analytics"
	"github.com/chrisdamba/retailiq/internal/models"
)

var testNow = time.Date(2025, 6, 15, 12, 30, 0, 0, time.UTC)

const testPartition = "year=2025/month=06/day=15/hour=12"

func campaignMessage(t *testing.T, customerID string, ltv float64) []byte {
	t.Helper()
	msg, err := json.Marshal(RetentionCampaignEvent{
		Timestamp:     testNow.Unix(),
		EventType:     EventRetentionAction,
		CustomerID:    customerID,
		Action:        models.ActionBundleDeal,
		Priority:      string(models.PriorityLow),
		LifetimeValue: ltv,
	})
	require.NoError(t, err)
	return msg
}

func TestPartition(t *testing.T) {
	_, p, err := partition([]byte(`{"timestamp": 1749990600}`))
	require.NoError(t, err)
	assert.Equal(t, testPartition, p)

	_, _, err = partition([]byte(`{"timestamp": "yesterday"}`))
	assert.Error(t, err)

	_, _, err = partition([]byte(`not json`))
	assert.Error(t, err)
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleOutput(&buf)

	require.NoError(t, c.WriteMessage("topic", []byte(`{"a":1}`)))
	require.NoError(t, c.Close())
	assert.Equal(t, "[topic] {\"a\":1}\n", buf.String())
}

func TestJSONOutput_AppendsPerPartition(t *testing.T) {
	dir := t.TempDir()
	j := NewJSONOutput(dir, "reports")

	require.NoError(t, j.WriteMessage(TopicRetentionCampaign, campaignMessage(t, "c1", 10)))
	require.NoError(t, j.WriteMessage(TopicRetentionCampaign, campaignMessage(t, "c2", 20)))
	require.NoError(t, j.Close())

	f, err := os.Open(filepath.Join(dir, "reports", TopicRetentionCampaign, filepath.FromSlash(testPartition), "data.json"))
	require.NoError(t, err)
	defer f.Close()

	var ids []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var event RetentionCampaignEvent
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &event))
		ids = append(ids, event.CustomerID)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"c1", "c2"}, ids)
}

func TestCSVOutput_SortedHeaderAndPlainNumbers(t *testing.T) {
	dir := t.TempDir()
	c := NewCSVOutput(dir, "reports")

	require.NoError(t, c.WriteMessage(TopicRetentionCampaign, campaignMessage(t, "c1", 1234567.5)))
	require.NoError(t, c.Close())

	f, err := os.Open(filepath.Join(dir, "reports", TopicRetentionCampaign, filepath.FromSlash(testPartition), "data.csv"))
	require.NoError(t, err)
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"action", "customerId", "eventType", "lifetimeValue", "priority", "timestamp"}, records[0])
	assert.Equal(t, []string{models.ActionBundleDeal, "c1", EventRetentionAction, "1234567.5", "low", "1749990600"}, records[1])
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "", formatCell(nil))
	assert.Equal(t, "0.1", formatCell(0.1))
	assert.Equal(t, `{"a":1}`, formatCell(map[string]interface{}{"a": 1}))
	assert.Equal(t, "true", formatCell(true))
}

func TestParquetOutput_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	p, err := NewParquetOutput(models.OutputConfig{Path: dir, Folder: "reports", Destination: "local"}, nil)
	require.NoError(t, err)

	require.NoError(t, p.WriteMessage(TopicRetentionCampaign, campaignMessage(t, "c1", 10)))
	require.NoError(t, p.WriteMessage(TopicRetentionCampaign, campaignMessage(t, "c2", 20)))
	require.NoError(t, p.Close())

	files, err := filepath.Glob(filepath.Join(dir, "reports", TopicRetentionCampaign, filepath.FromSlash(testPartition), "part-*.parquet"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	fr, err := local.NewLocalFileReader(files[0])
	require.NoError(t, err)
	defer fr.Close()
	pr, err := reader.NewParquetReader(fr, new(RetentionCampaignEvent), 1)
	require.NoError(t, err)
	defer pr.ReadStop()

	require.EqualValues(t, 2, pr.GetNumRows())
	rows := make([]RetentionCampaignEvent, 2)
	require.NoError(t, pr.Read(&rows))
	assert.Equal(t, "c1", rows[0].CustomerID)
	assert.Equal(t, 20.0, rows[1].LifetimeValue)
}

func TestParquetOutput_UnknownTopic(t *testing.T) {
	p, err := NewParquetOutput(models.OutputConfig{Path: t.TempDir(), Folder: "reports"}, nil)
	require.NoError(t, err)

	assert.Error(t, p.WriteMessage("mystery", campaignMessage(t, "c1", 1)))
	require.NoError(t, p.Close())
}

func TestGetSchema(t *testing.T) {
	for _, topic := range []string{TopicRetentionCampaign, TopicProcurementReorder, ReportTopic("revenue")} {
		sh, err := GetSchema(topic)
		require.NoError(t, err, topic)
		assert.NotEmpty(t, sh.SchemaElements, topic)
	}
	_, err := GetSchema("_reports")
	assert.Error(t, err)
}

func TestKafkaOutput_KeysByEntity(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if msg.Topic != TopicRetentionCampaign || string(key) != "c1" {
			return errors.New("unexpected campaign message")
		}
		return nil
	})
	producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		key, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(key) != "p1" {
			return errors.New("expected product key")
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	k := NewKafkaOutputWithProducer(producer, nil)
	require.NoError(t, k.WriteMessage(TopicRetentionCampaign, campaignMessage(t, "c1", 1)))
	require.NoError(t, k.WriteMessage(TopicProcurementReorder, []byte(`{"timestamp":1,"productId":"p1"}`)))
	assert.ErrorIs(t, k.WriteMessage(ReportTopic("revenue"), []byte(`{"timestamp":1}`)), sarama.ErrOutOfBrokers)
	require.NoError(t, k.Close())
}

func TestMessageKey(t *testing.T) {
	assert.Equal(t, "c1", messageKey([]byte(`{"customerId":"c1","productId":"p1"}`)))
	assert.Equal(t, "p1", messageKey([]byte(`{"productId":"p1"}`)))
	assert.Equal(t, "", messageKey([]byte(`{"kind":"revenue"}`)))
	assert.Equal(t, "", messageKey([]byte(`[]`)))
}

func TestNewDestination(t *testing.T) {
	cfg := &models.Config{Output: models.OutputConfig{Format: "console"}}
	dest, err := NewDestination(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &ConsoleOutput{}, dest)

	cfg.Output.Format = "xml"
	_, err = NewDestination(cfg, nil)
	assert.ErrorContains(t, err, "unsupported output format")

	cfg.Output = models.OutputConfig{Format: "parquet", Destination: "s3", CloudStorage: models.CloudStorageConfig{Provider: "azure", BucketName: "b"}}
	_, err = NewDestination(cfg, nil)
	assert.Error(t, err)
}

type recordedMessage struct {
	topic string
	msg   []byte
}

type recordingDestination struct {
	messages []recordedMessage
	failAt   int
}

func (r *recordingDestination) WriteMessage(topic string, msg []byte) error {
	if r.failAt > 0 && len(r.messages)+1 == r.failAt {
		return errors.New("destination unavailable")
	}
	r.messages = append(r.messages, recordedMessage{topic: topic, msg: msg})
	return nil
}

func (r *recordingDestination) Close() error { return nil }

type countingProgress int

func (c *countingProgress) Add(n int) error {
	*c += countingProgress(n)
	return nil
}

func TestDispatcher_PublishRetention(t *testing.T) {
	dest := &recordingDestination{}
	var progress countingProgress
	d := NewDispatcher(dest, analytics.FixedClock(testNow), nil).WithProgress(&progress)

	n, err := d.PublishRetention(models.RetentionReport{RecommendedActions: []models.RecommendedAction{
		{CustomerID: "c1", Action: models.ActionReEngagement, Priority: models.PriorityHigh, LifetimeValue: 900},
		{CustomerID: "c2", Action: models.ActionBundleDeal, Priority: models.PriorityLow, LifetimeValue: 40},
	}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, countingProgress(2), progress)
	require.Len(t, dest.messages, 2)

	var event RetentionCampaignEvent
	require.NoError(t, json.Unmarshal(dest.messages[0].msg, &event))
	assert.Equal(t, TopicRetentionCampaign, dest.messages[0].topic)
	assert.Equal(t, RetentionCampaignEvent{
		Timestamp:     testNow.Unix(),
		EventType:     EventRetentionAction,
		CustomerID:    "c1",
		Action:        models.ActionReEngagement,
		Priority:      "high",
		LifetimeValue: 900,
	}, event)
}

func TestDispatcher_PublishReordersStopsOnFailure(t *testing.T) {
	dest := &recordingDestination{failAt: 2}
	d := NewDispatcher(dest, analytics.FixedClock(testNow), nil)

	n, err := d.PublishReorders([]models.ReorderRecommendation{
		{ProductID: "A", CurrentStock: 2, ReorderPoint: 10, RecommendedQuantity: 95, Urgency: models.UrgencyImmediate, StockoutRisk: models.RiskHigh},
		{ProductID: "B", Urgency: models.UrgencySoon},
		{ProductID: "C", Urgency: models.UrgencySoon},
	})
	assert.ErrorContains(t, err, "product B")
	assert.Equal(t, 1, n)
	require.Len(t, dest.messages, 1)

	var event ProcurementReorderEvent
	require.NoError(t, json.Unmarshal(dest.messages[0].msg, &event))
	assert.Equal(t, int64(95), event.RecommendedQuantity)
	assert.Equal(t, "immediate", event.Urgency)
}

func TestDispatcher_ExportReport(t *testing.T) {
	dest := &recordingDestination{}
	d := NewDispatcher(dest, analytics.FixedClock(testNow), nil)

	require.NoError(t, d.ExportReport("revenue", models.RevenueMetrics{TotalRevenue: 42}))
	require.Len(t, dest.messages, 1)
	assert.Equal(t, "revenue_reports", dest.messages[0].topic)

	var event ReportEvent
	require.NoError(t, json.Unmarshal(dest.messages[0].msg, &event))
	assert.Equal(t, "revenue", event.Kind)
	assert.NotEmpty(t, event.RunID)

	var report models.RevenueMetrics
	require.NoError(t, json.Unmarshal([]byte(event.Report), &report))
	assert.Equal(t, 42.0, report.TotalRevenue)
}
