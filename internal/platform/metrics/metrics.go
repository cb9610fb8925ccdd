package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	voteRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evoto_vote_requests_total",
		Help: "Total de requisicoes de voto recebidas, por desfecho",
	}, []string{"status"})

	ballotEventsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "evoto_ballot_events_processed_total",
		Help: "Total de eventos de cedula processados pelo worker",
	})

	ballotEventDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "evoto_ballot_event_duration_seconds",
		Help:    "Tempo para processar um evento de cedula no worker",
		Buckets: prometheus.DefBuckets,
	})

	tabulationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "evoto_tabulation_duration_seconds",
		Help:    "Tempo de apuracao de uma eleicao",
		Buckets: prometheus.DefBuckets,
	})

	resultTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "evoto_result_transitions_total",
		Help: "Transicoes do ciclo de publicacao de resultados",
	}, []string{"transition"})
)

func ObserveVoteRequest(status string) {
	voteRequestsTotal.WithLabelValues(status).Inc()
}

func IncBallotEventProcessed() {
	ballotEventsProcessed.Inc()
}

func ObserveBallotEventDuration(seconds float64) {
	ballotEventDuration.Observe(seconds)
}

func ObserveTabulation(seconds float64) {
	tabulationDuration.Observe(seconds)
}

func IncResultTransition(transition string) {
	resultTransitions.WithLabelValues(transition).Inc()
}
