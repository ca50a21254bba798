// Copyright 2024-2026 Aiku AI

package admin

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aiku/buttbot/pkg/bot"
	"github.com/aiku/buttbot/pkg/buttify"
)

// Metrics exports what the bot does as prometheus collectors.
type Metrics struct {
	messages      *prometheus.CounterVec
	commands      *prometheus.CounterVec
	effectiveRate *prometheus.GaugeVec
}

var _ bot.Metrics = (*Metrics)(nil)

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buttbot_messages_total",
				Help: "Messages processed by the substitution engine, by outcome",
			},
			[]string{"outcome"},
		),
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "buttbot_commands_total",
				Help: "Bot commands handled, by command name",
			},
			[]string{"command"},
		),
		effectiveRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "buttbot_effective_rate",
				Help: "Current effective trigger rate of each joined channel",
			},
			[]string{"channel"},
		),
	}
	reg.MustRegister(m.messages, m.commands, m.effectiveRate)
	return m
}

func (m *Metrics) ObserveMessage(channel string, outcome buttify.Outcome, effectiveRate int) {
	m.messages.WithLabelValues(outcome.String()).Inc()
	m.effectiveRate.WithLabelValues(channel).Set(float64(effectiveRate))
}

func (m *Metrics) ObserveCommand(command string) {
	m.commands.WithLabelValues(command).Inc()
}

// ForgetChannel drops the gauge of a channel the bot left.
func (m *Metrics) ForgetChannel(channel string) {
	m.effectiveRate.DeleteLabelValues(channel)
}
