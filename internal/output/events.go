package output

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xitongsys/parquet-go/schema"
)

const (
	TopicRetentionCampaign  = "retention_campaign_events"
	TopicProcurementReorder = "procurement_reorder_events"

	EventRetentionAction = "retention_action"
	EventReorder         = "reorder_recommendation"
	EventReport          = "report"
)

// ReportTopic is the topic a whole report of kind is exported to.
func ReportTopic(kind string) string {
	return kind + "_reports"
}

// RetentionCampaignEvent asks the marketing system to run one campaign action.
type RetentionCampaignEvent struct {
	Timestamp     int64   `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	EventType     string  `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	CustomerID    string  `json:"customerId" parquet:"name=customerId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Action        string  `json:"action" parquet:"name=action,type=BYTE_ARRAY,convertedtype=UTF8"`
	Priority      string  `json:"priority" parquet:"name=priority,type=BYTE_ARRAY,convertedtype=UTF8"`
	LifetimeValue float64 `json:"lifetimeValue" parquet:"name=lifetimeValue,type=DOUBLE"`
}

// ProcurementReorderEvent hands one reorder recommendation to procurement.
type ProcurementReorderEvent struct {
	Timestamp           int64  `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	EventType           string `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	ProductID           string `json:"productId" parquet:"name=productId,type=BYTE_ARRAY,convertedtype=UTF8"`
	ProductName         string `json:"productName" parquet:"name=productName,type=BYTE_ARRAY,convertedtype=UTF8"`
	Supplier            string `json:"supplier" parquet:"name=supplier,type=BYTE_ARRAY,convertedtype=UTF8"`
	CurrentStock        int64  `json:"currentStock" parquet:"name=currentStock,type=INT64"`
	ReorderPoint        int64  `json:"reorderPoint" parquet:"name=reorderPoint,type=INT64"`
	RecommendedQuantity int64  `json:"recommendedQuantity" parquet:"name=recommendedQuantity,type=INT64"`
	Urgency             string `json:"urgency" parquet:"name=urgency,type=BYTE_ARRAY,convertedtype=UTF8"`
	StockoutRisk        string `json:"stockoutRisk" parquet:"name=stockoutRisk,type=BYTE_ARRAY,convertedtype=UTF8"`
}

// ReportEvent wraps a whole report. Report holds the report as JSON text so
// every kind shares one flat schema.
type ReportEvent struct {
	Timestamp int64  `json:"timestamp" parquet:"name=timestamp,type=INT64"`
	EventType string `json:"eventType" parquet:"name=eventType,type=BYTE_ARRAY,convertedtype=UTF8"`
	RunID     string `json:"runId" parquet:"name=runId,type=BYTE_ARRAY,convertedtype=UTF8"`
	Kind      string `json:"kind" parquet:"name=kind,type=BYTE_ARRAY,convertedtype=UTF8"`
	Report    string `json:"report" parquet:"name=report,type=BYTE_ARRAY,convertedtype=UTF8"`
}

func isReportTopic(topic string) bool {
	return strings.HasSuffix(topic, "_reports") && topic != "_reports"
}

func GetSchema(topic string) (*schema.SchemaHandler, error) {
	var sh *schema.SchemaHandler
	var err error

	switch {
	case topic == TopicRetentionCampaign:
		sh, err = schema.NewSchemaHandlerFromStruct(new(RetentionCampaignEvent))
	case topic == TopicProcurementReorder:
		sh, err = schema.NewSchemaHandlerFromStruct(new(ProcurementReorderEvent))
	case isReportTopic(topic):
		sh, err = schema.NewSchemaHandlerFromStruct(new(ReportEvent))
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}

	if err != nil {
		return nil, fmt.Errorf("error creating schema for %s: %w", topic, err)
	}
	return sh, nil
}

// decodeEvent decodes msg into the event struct registered for topic.
func decodeEvent(topic string, msg []byte) (any, error) {
	switch {
	case topic == TopicRetentionCampaign:
		return decodeAs[RetentionCampaignEvent](msg)
	case topic == TopicProcurementReorder:
		return decodeAs[ProcurementReorderEvent](msg)
	case isReportTopic(topic):
		return decodeAs[ReportEvent](msg)
	default:
		return nil, fmt.Errorf("unknown topic: %s", topic)
	}
}

func decodeAs[T any](msg []byte) (any, error) {
	var v T
	if err := json.Unmarshal(msg, &v); err != nil {
		return nil, err
	}
	return v, nil
}
