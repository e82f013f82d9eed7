package rpc

import (
	rpctypes "github.com/tendermint/tendermint/rpc/jsonrpc/types"
)

// ResultMetrics exposes the labeled snapshots registered on
// env.MetricSet (pool size, queue size, sender index size, §4.5's
// mempool operations) as raw JSON strings, one per label.
type ResultMetrics struct {
	Envelope
	Metrics map[string]string `json:"metrics"`
}

func JSONMetrics(ctx *rpctypes.Context, label string) (*ResultMetrics, error) {
	result := &ResultMetrics{Envelope: okEnvelope(), Metrics: make(map[string]string)}

	var labels []string
	if label != "" {
		labels = []string{label}
	} else {
		labels = env.MetricSet.GetAlllabels()
	}

	for _, l := range labels {
		item := env.MetricSet.GetMetrics(l)
		if item != nil {
			result.Metrics[l] = item.JSONString()
		}
	}

	return result, nil
}
