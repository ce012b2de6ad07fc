package metrics

import "github.com/prometheus/client_golang/prometheus"

// DomainMetrics counts business events emitted by the trade and queue services.
type DomainMetrics struct {
	orders        *prometheus.CounterVec
	registrations *prometheus.CounterVec
	published     *prometheus.CounterVec
}

func NewDomainMetrics(reg prometheus.Registerer) *DomainMetrics {
	if reg == nil {
		return &DomainMetrics{}
	}
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tableside_orders_total",
		Help: "Order lifecycle events by action.",
	}, []string{"action"})
	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tableside_registrations_total",
		Help: "Waiting list registrations by action.",
	}, []string{"action"})
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "tableside_outbox_published_total",
		Help: "Outbox rows handed to the broker by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(orders, registrations, published)
	return &DomainMetrics{orders: orders, registrations: registrations, published: published}
}

// OrderEvent counts an order action such as created, cancelled or accepted.
func (d *DomainMetrics) OrderEvent(action string) {
	if d == nil || d.orders == nil {
		return
	}
	d.orders.WithLabelValues(normalizeLabel(action)).Inc()
}

func (d *DomainMetrics) RegistrationEvent(action string) {
	if d == nil || d.registrations == nil {
		return
	}
	d.registrations.WithLabelValues(normalizeLabel(action)).Inc()
}

// OutboxPublished counts one publish attempt outcome: published, retry or terminal.
func (d *DomainMetrics) OutboxPublished(outcome string) {
	if d == nil || d.published == nil {
		return
	}
	d.published.WithLabelValues(normalizeLabel(outcome)).Inc()
}
