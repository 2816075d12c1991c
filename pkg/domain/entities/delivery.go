package entities

import (
	"fmt"
	"time"
)

// DeliveryStage is a position in the fulfillment sequence
type DeliveryStage string

const (
	StageInInventory         DeliveryStage = "in_inventory"
	StageCollectedByDriver   DeliveryStage = "collected_by_driver"
	StageInTransit           DeliveryStage = "in_transit"
	StageArrivedAtLocation   DeliveryStage = "arrived_at_location"
	StageCollectedByReceiver DeliveryStage = "collected_by_receiver"
	StageReturned            DeliveryStage = "returned"
)

// stageSequence is the forward path; returned is a side branch
var stageSequence = []DeliveryStage{
	StageInInventory,
	StageCollectedByDriver,
	StageInTransit,
	StageArrivedAtLocation,
	StageCollectedByReceiver,
}

// DeliveryStatus is the coarse state derived from the stage
type DeliveryStatus string

const (
	DeliveryPending    DeliveryStatus = "pending"
	DeliveryInProgress DeliveryStatus = "in_progress"
	DeliveryCompleted  DeliveryStatus = "completed"
	DeliveryReturned   DeliveryStatus = "returned"
)

// Valid reports whether the stage is known
func (s DeliveryStage) Valid() bool {
	return s == StageReturned || s.position() >= 0
}

// IsTerminal reports whether no further stage change is possible
func (s DeliveryStage) IsTerminal() bool {
	return s == StageCollectedByReceiver || s == StageReturned
}

func (s DeliveryStage) position() int {
	for i, stage := range stageSequence {
		if stage == s {
			return i
		}
	}
	return -1
}

// NextStage returns the immediate successor of stage on the forward path
func NextStage(stage DeliveryStage) (DeliveryStage, bool) {
	pos := stage.position()
	if pos < 0 || pos+1 >= len(stageSequence) {
		return "", false
	}
	return stageSequence[pos+1], true
}

// StatusForStage derives the delivery status from its stage
func StatusForStage(stage DeliveryStage) DeliveryStatus {
	switch stage {
	case StageInInventory:
		return DeliveryPending
	case StageReturned:
		return DeliveryReturned
	case StageCollectedByReceiver:
		return DeliveryCompleted
	default:
		return DeliveryInProgress
	}
}

// CanAdvance reports whether a delivery at from may move to to. In strict
// mode only the immediate successor is allowed; otherwise any later stage on
// the forward path is. Returned is reachable from every non-terminal stage.
func CanAdvance(from, to DeliveryStage, strict bool) bool {
	if from.IsTerminal() || !to.Valid() {
		return false
	}
	if to == StageReturned {
		return true
	}
	if strict {
		next, ok := NextStage(from)
		return ok && next == to
	}
	return to.position() > from.position()
}

// DeliveryTrackingEvent is one immutable entry of a delivery's history
type DeliveryTrackingEvent struct {
	ID        string
	Stage     DeliveryStage
	Timestamp time.Time
	Notes     string
	UpdatedBy string
	Location  string
}

// DeliveryPerson is the driver carrying a delivery
type DeliveryPerson struct {
	ID            string `json:"id"`
	Name          string `json:"name" validate:"required"`
	Phone         string `json:"phone"`
	VehicleNumber string `json:"vehicle_number"`
}

// Delivery tracks the shipment of one invoice line
type Delivery struct {
	ID                    string
	InvoiceID             string
	InvoiceNumber         string
	ProductCode           string
	ProductName           string
	Quantity              Quantity
	CurrentStage          DeliveryStage
	Status                DeliveryStatus
	TrackingHistory       []DeliveryTrackingEvent
	DeliveryPerson        *DeliveryPerson
	RecipientName         string
	RecipientPhone        string
	DeliveryAddress       string
	EstimatedDeliveryDate *time.Time
	ActualDeliveryDate    *time.Time
	CreatedAt             time.Time
	Notes                 string
}

// Record appends a tracking event and moves the delivery to its stage.
// Status is recomputed from the stage and reaching the receiver stamps the
// actual delivery date.
func (d *Delivery) Record(event DeliveryTrackingEvent) error {
	if !event.Stage.Valid() {
		return fmt.Errorf("unknown delivery stage %q", event.Stage)
	}
	d.TrackingHistory = append(d.TrackingHistory, event)
	d.CurrentStage = event.Stage
	d.Status = StatusForStage(event.Stage)
	if event.Stage == StageCollectedByReceiver {
		at := event.Timestamp
		d.ActualDeliveryDate = &at
	}
	return nil
}

// LastEvent returns the most recent tracking event
func (d *Delivery) LastEvent() (DeliveryTrackingEvent, bool) {
	if len(d.TrackingHistory) == 0 {
		return DeliveryTrackingEvent{}, false
	}
	return d.TrackingHistory[len(d.TrackingHistory)-1], true
}

// Clone returns a deep copy of the delivery
func (d *Delivery) Clone() *Delivery {
	if d == nil {
		return nil
	}
	c := *d
	c.TrackingHistory = append([]DeliveryTrackingEvent(nil), d.TrackingHistory...)
	if d.DeliveryPerson != nil {
		person := *d.DeliveryPerson
		c.DeliveryPerson = &person
	}
	c.EstimatedDeliveryDate = cloneTime(d.EstimatedDeliveryDate)
	c.ActualDeliveryDate = cloneTime(d.ActualDeliveryDate)
	return &c
}
