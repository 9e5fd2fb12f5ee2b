// Package events fans workflow changes out to live dashboards and the event stream.
package events

import (
	"context"
	"time"
)

const (
	VisitStatusChanged   = "visit.status_changed"
	LabOrdered           = "lab.ordered"
	LabPaid              = "lab.paid"
	LabCompleted         = "lab.completed"
	PrescriptionOrdered  = "prescription.ordered"
	PrescriptionPaid     = "prescription.paid"
	PrescriptionDispense = "prescription.dispensed"
	BillCreated          = "bill.created"
	BillPaymentRecorded  = "bill.payment_recorded"
	PatientAdmitted      = "admission.created"
	PatientDischarged    = "admission.discharged"
	StockAlert           = "inventory.alert"
)

type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
	At   time.Time   `json:"at"`
}

func New(eventType string, data interface{}) Event {
	return Event{Type: eventType, Data: data, At: time.Now().UTC()}
}

// Publisher must not block the caller for long; delivery is best effort.
type Publisher interface {
	Publish(ctx context.Context, evt Event)
}

type Nop struct{}

func (Nop) Publish(context.Context, Event) {}

// Multi delivers to every publisher in order.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, evt Event) {
	for _, p := range m {
		if p != nil {
			p.Publish(ctx, evt)
		}
	}
}

// Recorder keeps published events in memory.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(_ context.Context, evt Event) {
	r.Events = append(r.Events, evt)
}

func (r *Recorder) Types() []string {
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}
