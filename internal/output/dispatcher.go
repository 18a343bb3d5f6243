package output

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chrisdamba/retailiq/internal/analytics"
	"github.com/chrisdamba/retailiq/internal/models"
)

// Progress receives one tick per published event. *progressbar.ProgressBar
// satisfies it.
type Progress interface {
	Add(num int) error
}

// Dispatcher turns reports into events and writes them to a destination.
type Dispatcher struct {
	dest     OutputDestination
	clock    analytics.Clock
	log      *zap.Logger
	progress Progress
}

func NewDispatcher(dest OutputDestination, clock analytics.Clock, log *zap.Logger) *Dispatcher {
	if clock == nil {
		clock = analytics.SystemClock
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{dest: dest, clock: clock, log: log}
}

// WithProgress reports every published event to p.
func (d *Dispatcher) WithProgress(p Progress) *Dispatcher {
	d.progress = p
	return d
}

// PublishRetention sends one campaign event per recommended action and
// returns how many were written before the first failure.
func (d *Dispatcher) PublishRetention(report models.RetentionReport) (int, error) {
	ts := d.clock.Now().Unix()
	for i, action := range report.RecommendedActions {
		event := RetentionCampaignEvent{
			Timestamp:     ts,
			EventType:     EventRetentionAction,
			CustomerID:    action.CustomerID,
			Action:        action.Action,
			Priority:      string(action.Priority),
			LifetimeValue: action.LifetimeValue,
		}
		if err := d.send(TopicRetentionCampaign, event); err != nil {
			return i, fmt.Errorf("failed to publish action for customer %s: %w", action.CustomerID, err)
		}
	}
	d.log.Info("retention campaign published", zap.Int("actions", len(report.RecommendedActions)))
	return len(report.RecommendedActions), nil
}

// PublishReorders sends one procurement event per recommendation.
func (d *Dispatcher) PublishReorders(recommendations []models.ReorderRecommendation) (int, error) {
	ts := d.clock.Now().Unix()
	for i, r := range recommendations {
		event := ProcurementReorderEvent{
			Timestamp:           ts,
			EventType:           EventReorder,
			ProductID:           r.ProductID,
			ProductName:         r.ProductName,
			Supplier:            r.Supplier,
			CurrentStock:        int64(r.CurrentStock),
			ReorderPoint:        int64(r.ReorderPoint),
			RecommendedQuantity: int64(r.RecommendedQuantity),
			Urgency:             string(r.Urgency),
			StockoutRisk:        string(r.StockoutRisk),
		}
		if err := d.send(TopicProcurementReorder, event); err != nil {
			return i, fmt.Errorf("failed to publish reorder for product %s: %w", r.ProductID, err)
		}
	}
	d.log.Info("reorder recommendations published", zap.Int("recommendations", len(recommendations)))
	return len(recommendations), nil
}

// ExportReport writes report as a single event on the kind's report topic.
func (d *Dispatcher) ExportReport(kind string, report any) error {
	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode %s report: %w", kind, err)
	}
	event := ReportEvent{
		Timestamp: d.clock.Now().Unix(),
		EventType: EventReport,
		RunID:     uuid.NewString(),
		Kind:      kind,
		Report:    string(body),
	}
	if err := d.send(ReportTopic(kind), event); err != nil {
		return fmt.Errorf("failed to export %s report: %w", kind, err)
	}
	d.log.Info("report exported", zap.String("kind", kind), zap.String("run_id", event.RunID))
	return nil
}

func (d *Dispatcher) send(topic string, event any) error {
	msg, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := d.dest.WriteMessage(topic, msg); err != nil {
		return err
	}
	if d.progress != nil {
		_ = d.progress.Add(1)
	}
	return nil
}
