package synth_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nitta-corp/nitta/bus"
	"github.com/nitta-corp/nitta/internal/scenarios"
	"github.com/nitta-corp/nitta/process"
	"github.com/nitta-corp/nitta/synth"
)

func allPolicies() []synth.Policy {
	return []synth.Policy{
		synth.Greedy{},
		synth.ObviousBinding{},
		synth.BoundedAllThreads{TopK: 3, MaxDepth: 6},
	}
}

// TestPolicies_ConvergeOnFibonacci exercises §8 property 8: every policy,
// started from the same S1 network, must reach a complete schedule with
// the same number of recorded process steps.
func TestPolicies_ConvergeOnFibonacci(t *testing.T) {
	var stepCounts []int
	for _, p := range allPolicies() {
		net := scenarios.FibonacciNetwork()
		res, err := p.Run(synth.Root(net), time.Time{}, nil)
		require.NoError(t, err, p.Name())
		require.Equal(t, synth.Complete, res.Status, p.Name())

		final, ok := res.Node.Model.(*bus.Network)
		require.True(t, ok, p.Name())
		assert.True(t, final.IsComplete(), p.Name())
		stepCounts = append(stepCounts, len(final.AggregatedProcess().Steps()))
	}
	for i := 1; i < len(stepCounts); i++ {
		assert.Equal(t, stepCounts[0], stepCounts[i], "policy %d diverged from policy 0's step count", i)
	}
}

// TestPolicies_ConvergeOnBusExclusivity exercises §8 scenario S5: two
// independently-ready sources must both be transferred, regardless of
// which policy drives the search.
func TestPolicies_ConvergeOnBusExclusivity(t *testing.T) {
	for _, p := range allPolicies() {
		net := scenarios.BusExclusivityNetwork()
		res, err := p.Run(synth.Root(net), time.Time{}, nil)
		require.NoError(t, err, p.Name())
		require.Equal(t, synth.Complete, res.Status, p.Name())

		final := res.Node.Model.(*bus.Network)
		transports := 0
		for _, s := range final.AggregatedProcess().Steps() {
			if s.Kind == process.KindTransport {
				transports++
			}
		}
		assert.GreaterOrEqual(t, transports, 2, p.Name())
	}
}

func TestGreedy_TimesOutGracefully(t *testing.T) {
	net := scenarios.FibonacciNetwork()
	res, err := synth.Greedy{}.Run(synth.Root(net), time.Now().Add(-time.Second), nil)
	assert.ErrorIs(t, err, synth.ErrTimeout)
	assert.True(t, res.TimedOut)
}
