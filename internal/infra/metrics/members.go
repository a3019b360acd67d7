package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(registrations, epinsRedeemed, epinsIssued) }

var registrations = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "member_registrations_total",
		Help: "Registration attempts by outcome.",
	},
	[]string{"outcome"}, // 'ok' or a stable failure reason
)

var epinsRedeemed = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "epins_redeemed_total",
		Help: "Activation codes consumed by successful registrations or upgrades.",
	},
)

var epinsIssued = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "epins_issued_total",
		Help: "Activation codes created by the admin issuance flow.",
	},
)

func IncRegistration(outcome string) { registrations.WithLabelValues(outcome).Inc() }
func IncEPinsRedeemed()              { epinsRedeemed.Inc() }
func AddEPinsIssued(n int)           { epinsIssued.Add(float64(n)) }
