package otel

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	headers := ParseHeaders(" api-key = secret ,broken, =nokey,tenant=nfi")
	require.Equal(t, map[string]string{"api-key": "secret", "tenant": "nfi"}, headers)
}

func TestInitDisabledIsNoop(t *testing.T) {
	_, err := Init(context.Background(), Config{})
	require.Error(t, err)

	shutdown, err := Init(context.Background(), Config{ServiceName: "nfid"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, span := Tracer().Start(context.Background(), "noop")
	span.End()
}

func TestSamplerBounds(t *testing.T) {
	require.Contains(t, sampler(0).Description(), "AlwaysOnSampler")
	require.Contains(t, sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestShutdownChainReverseOrderFirstError(t *testing.T) {
	var order []int
	first, second := errors.New("first"), errors.New("second")
	chain := shutdownChain{
		func(context.Context) error { order = append(order, 1); return first },
		func(context.Context) error { order = append(order, 2); return second },
	}
	require.ErrorIs(t, chain.shutdown(context.Background()), second)
	require.Equal(t, []int{2, 1}, order)
}
