/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package trivia

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcomes recorded for every inbound client message.
const (
	outcomeApplied   = "applied"
	outcomeIgnored   = "ignored"
	outcomeRejected  = "rejected"
	outcomeMalformed = "malformed"
)

var (
	roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "playr",
		Subsystem: "trivia",
		Name:      "rooms_active",
		Help:      "Number of trivia rooms currently running.",
	})

	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "playr",
		Subsystem: "trivia",
		Name:      "connections_active",
		Help:      "Number of connections registered across all rooms.",
	})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "playr",
		Subsystem: "trivia",
		Name:      "commands_total",
		Help:      "Client messages processed, by command type and outcome.",
	}, []string{"type", "outcome"})

	transitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "playr",
		Subsystem: "trivia",
		Name:      "phase_transitions_total",
		Help:      "Game phase changes, by the phase entered.",
	}, []string{"state"})

	broadcastsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "playr",
		Subsystem: "trivia",
		Name:      "broadcasts_total",
		Help:      "Messages fanned out to a whole room, by message type.",
	}, []string{"type"})

	sendFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "playr",
		Subsystem: "trivia",
		Name:      "send_failures_total",
		Help:      "Messages that could not be handed to a connection.",
	})
)
