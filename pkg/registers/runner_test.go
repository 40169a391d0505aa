package registers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/registration-agent/pkg/config"
	"github.com/registration-agent/pkg/metrics"
)

type fakeCollector struct {
	name     string
	initErr  error
	failWith error
	collects atomic.Int32
	closed   atomic.Bool
}

func (f *fakeCollector) Name() string { return f.name }
func (f *fakeCollector) Init() error  { return f.initErr }
func (f *fakeCollector) Collect(context.Context) error {
	f.collects.Add(1)
	return f.failWith
}
func (f *fakeCollector) Close() error {
	f.closed.Store(true)
	return nil
}

func TestRunnerCollectsImmediatelyAndOnTick(t *testing.T) {
	r := NewRunner(20 * time.Millisecond)
	ok := &fakeCollector{name: "ok"}
	bad := &fakeCollector{name: "bad", failWith: errors.New("boom")}
	r.Register(ok)
	r.Register(bad)

	require.NoError(t, r.Start(context.Background()))
	require.Eventually(t, func() bool { return ok.collects.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, bad.collects.Load(), int32(3))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, r.Shutdown(ctx))
	assert.True(t, ok.closed.Load())
	assert.True(t, bad.closed.Load())

	n := ok.collects.Load()
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, n, ok.collects.Load())
}

func TestRunnerInitFailure(t *testing.T) {
	r := NewRunner(time.Hour)
	r.Register(&fakeCollector{name: "broken", initErr: errors.New("no cpu")})
	assert.Error(t, r.Start(context.Background()))
	assert.NoError(t, r.Shutdown(context.Background()))
}

func TestRunnerStartTwice(t *testing.T) {
	r := NewRunner(time.Hour)
	require.NoError(t, r.Start(context.Background()))
	assert.Error(t, r.Start(context.Background()))
	assert.NoError(t, r.Shutdown(context.Background()))
}

func TestCollectAllCombinesErrors(t *testing.T) {
	r := NewRunner(time.Hour)
	r.Register(&fakeCollector{name: "a", failWith: errors.New("x")})
	r.Register(&fakeCollector{name: "b", failWith: errors.New("y")})
	err := r.CollectAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a: x")
	assert.Contains(t, err.Error(), "b: y")
}

func TestRegisterCollectorsHonorsSwitches(t *testing.T) {
	f := metrics.NewMetricFactory(metrics.NewPromRegistry(prometheus.NewRegistry()))
	r := NewRunner(time.Hour)
	got := RegisterCollectors(r, &config.CollectorConfig{
		Host: config.HostDataSourceConfig{Enable: true},
		Sys:  config.SysDataSourceConfig{Enable: false},
	}, f)
	require.Len(t, got, 1)
	assert.Equal(t, "host", got[0].Name())
	assert.Len(t, r.Collectors(), 1)
}
