// Package tracking owns the delivery lifecycle of a single order: its status,
// the progress shown for it and the timeline of tracking events.
//
// The happy path is pending -> processing -> shipped -> delivered. Any
// non-terminal order can be cancelled. delivered and cancelled are terminal.
// A Machine never starts timers; time-driven updates come from a Simulator
// owned by the caller. A Machine is not safe for concurrent use.
package tracking

import (
	"fmt"
	"slices"
	"time"

	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/errors"
	"github.com/Rwadhwa18/grocery-bazaar-hub/internal/models"
	"github.com/google/uuid"
)

const (
	CancelDescription    = "Order cancelled by customer"
	DeliveredDescription = "Order delivered"
	OnlineLocation       = "Online"

	DefaultInitialEstimate = 30
	DefaultMinimumEstimate = 5
)

var progress = map[models.OrderStatus]int{
	models.OrderStatusPending:    0,
	models.OrderStatusProcessing: 33,
	models.OrderStatusShipped:    66,
	models.OrderStatusDelivered:  100,
	models.OrderStatusCancelled:  0,
}

var rank = map[models.OrderStatus]int{
	models.OrderStatusPending:    0,
	models.OrderStatusProcessing: 1,
	models.OrderStatusShipped:    2,
	models.OrderStatusDelivered:  3,
}

// Progress maps a status to the percentage shown on a progress bar.
func Progress(status models.OrderStatus) int {
	return progress[status]
}

// CourierState is presentation state for a shipped order. It is not part of
// the persisted order.
type CourierState struct {
	Position         *models.CourierPosition
	EstimatedMinutes int
}

type Machine struct {
	order   models.Order
	events  []models.TrackingEvent
	courier *CourierState

	now             func() time.Time
	newID           func() string
	initialEstimate int
	minimumEstimate int
}

type Option func(*Machine)

func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(m *Machine) { m.newID = newID }
}

// WithEstimates sets the courier ETA seeded on shipping and the floor it
// never drops below.
func WithEstimates(initial, minimum int) Option {
	return func(m *Machine) {
		m.initialEstimate = initial
		m.minimumEstimate = minimum
	}
}

// NewMachine takes ownership of a copy of order and its events.
func NewMachine(order models.Order, events []models.TrackingEvent, opts ...Option) *Machine {
	m := &Machine{
		order:           order,
		events:          slices.Clone(events),
		now:             time.Now,
		newID:           uuid.NewString,
		initialEstimate: DefaultInitialEstimate,
		minimumEstimate: DefaultMinimumEstimate,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.order.Items = slices.Clone(order.Items)

	if m.order.Status == models.OrderStatusShipped {
		m.courier = &CourierState{EstimatedMinutes: m.initialEstimate}
	}

	return m
}

func (m *Machine) Order() models.Order {
	order := m.order
	order.Items = slices.Clone(m.order.Items)

	return order
}

func (m *Machine) Status() models.OrderStatus {
	return m.order.Status
}

func (m *Machine) Progress() int {
	return Progress(m.order.Status)
}

// Events returns the timeline in the order it was recorded.
func (m *Machine) Events() []models.TrackingEvent {
	return slices.Clone(m.events)
}

// Timeline returns the events newest first.
func (m *Machine) Timeline() []models.TrackingEvent {
	out := slices.Clone(m.events)
	slices.Reverse(out)
	slices.SortStableFunc(out, func(a, b models.TrackingEvent) int {
		return b.Timestamp.Compare(a.Timestamp)
	})

	return out
}

// Courier is nil unless the order is shipped.
func (m *Machine) Courier() *CourierState {
	if m.courier == nil {
		return nil
	}

	c := *m.courier
	if c.Position != nil {
		p := *c.Position
		c.Position = &p
	}

	return &c
}

// Advance moves a shipped order to delivered and reports whether it did.
// It is the only automatic transition; every other state is left alone.
func (m *Machine) Advance() bool {
	if m.order.Status != models.OrderStatusShipped {
		return false
	}

	m.transition(models.OrderStatusDelivered, "", DeliveredDescription)

	return true
}

// Cancel moves a non-terminal order to cancelled and appends one event. It
// returns an INVALID_TRANSITION error, and changes nothing, for a terminal order.
func (m *Machine) Cancel() error {
	if m.order.Status.IsTerminal() {
		return errors.InvalidTransitionError(fmt.Sprintf("Order %s is already %s", m.order.ID, m.order.Status))
	}

	m.transition(models.OrderStatusCancelled, OnlineLocation, CancelDescription)

	return nil
}

// SetStatus is the manual forward move among pending, processing and shipped.
// delivered is only reached through Advance and cancelled through Cancel.
func (m *Machine) SetStatus(status models.OrderStatus, location, description string) error {
	if status != models.OrderStatusProcessing && status != models.OrderStatusShipped {
		return errors.InvalidTransitionError(fmt.Sprintf("Status %q cannot be set directly", status))
	}

	if m.order.Status.IsTerminal() || rank[status] <= rank[m.order.Status] {
		return errors.InvalidTransitionError(fmt.Sprintf("Order %s cannot move from %s to %s", m.order.ID, m.order.Status, status))
	}

	if description == "" {
		description = defaultDescription(status)
	}

	m.transition(status, location, description)

	return nil
}

// RecordCourierPosition stores a courier sample and lowers the ETA by
// elapsedMinutes, never below the configured floor. Samples outside shipped
// are ignored.
func (m *Machine) RecordCourierPosition(lat, lng float64, elapsedMinutes int) bool {
	if m.order.Status != models.OrderStatusShipped || m.courier == nil {
		return false
	}

	m.courier.Position = &models.CourierPosition{Lat: lat, Lng: lng}
	m.courier.EstimatedMinutes = max(m.courier.EstimatedMinutes-max(elapsedMinutes, 0), m.minimumEstimate)

	return true
}

func (m *Machine) transition(status models.OrderStatus, location, description string) {
	now := m.now()

	m.order.Status = status
	m.order.UpdatedAt = now

	m.events = append(m.events, models.TrackingEvent{
		ID:          m.newID(),
		OrderID:     m.order.ID,
		Status:      status,
		Location:    location,
		Timestamp:   now,
		Description: description,
	})

	if status == models.OrderStatusShipped {
		m.courier = &CourierState{EstimatedMinutes: m.initialEstimate}
	} else {
		m.courier = nil
	}
}

func defaultDescription(status models.OrderStatus) string {
	switch status {
	case models.OrderStatusProcessing:
		return "Order confirmed and processed"
	case models.OrderStatusShipped:
		return "Order shipped with shipping partner"
	}

	return ""
}
