package metrics

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cardano-community/node-sync-runner/types"
)

const (
	MetricsNamespace = "syncrunner"
)

var (
	Debug                bool = true
	validStatuses             = []types.StepStatus{types.StepStatusPass, types.StepStatusFail, types.StepStatusSkip}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	stepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "steps_total",
		Help:      "Count of executed pipeline steps",
	}, []string{
		"network_name",
		"run_id",
		"step",
		"result",
	})

	stepDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "step_duration_seconds",
		Help:      "Duration of pipeline steps",
	}, []string{
		"network_name",
		"run_id",
		"step",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Result of sync test runs",
	}, []string{
		"network_name",
		"run_id",
		"result",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of sync test runs",
	}, []string{
		"network_name",
		"run_id",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordStep records the outcome of a single pipeline step
func RecordStep(network string, runID string, step string, status types.StepStatus, duration time.Duration) {
	if Debug {
		log.Debug("metric inc",
			"m", "steps_total",
			"network", network,
			"run_id", runID,
			"step", step,
			"result", status,
		)
	}
	stepsTotal.WithLabelValues(network, runID, step, string(status)).Inc()
	stepDuration.WithLabelValues(network, runID, step).Set(duration.Seconds())
}

// RecordRunResult records the overall outcome of a run
func RecordRunResult(network string, runID string, status types.StepStatus, duration time.Duration) {
	for _, s := range validStatuses {
		val := float64(0)
		if s == status {
			val = 1
		}
		runResults.WithLabelValues(network, runID, string(s)).Set(val)
	}
	runDuration.WithLabelValues(network, runID).Set(duration.Seconds())
}
