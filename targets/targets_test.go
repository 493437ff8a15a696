// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package targets

import (
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	harness "github.com/gogpu/gg-harness"
	"github.com/gogpu/gg-harness/backend/halgpu"
	"github.com/gogpu/gg-harness/config"
)

func TestListOrder(t *testing.T) {
	assert.Equal(t, []string{
		NativeGPU, NativeGPURGB, Window, WindowRGB, Software, SoftwareRGB,
	}, Registry().Names())

	for _, tg := range List() {
		want := harness.ContentColorAlpha
		if tg.Name == NativeGPURGB || tg.Name == WindowRGB || tg.Name == SoftwareRGB {
			want = harness.ContentColor
		}
		assert.Equal(t, want, tg.Content, tg.Name)
	}
}

func TestLookupNonexistent(t *testing.T) {
	tg, ok := Lookup("nonexistent")
	assert.False(t, ok)
	assert.Empty(t, tg.Name)

	_, ok = Lookup("Software")
	assert.False(t, ok, "lookup is case-sensitive")
}

func TestLookupKinds(t *testing.T) {
	tests := []struct {
		name string
		kind harness.SurfaceKind
	}{
		{NativeGPU, harness.KindGPU},
		{Window, harness.KindWindow},
		{SoftwareRGB, harness.KindImage},
	}
	for _, tt := range tests {
		tg, ok := Lookup(tt.name)
		require.True(t, ok, tt.name)
		assert.Equal(t, tt.kind, tg.Kind, tt.name)
	}
}

func TestConcurrentReaders(t *testing.T) {
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_, ok := Lookup(Software)
				assert.True(t, ok)
				assert.Len(t, List(), 6)
			}
		}()
	}
	wg.Wait()
}

func TestNativeGPUScenario(t *testing.T) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	cfg := config.Default()
	cfg.GPU.Backend = "noop"
	tg, ok := New(cfg).Lookup(NativeGPU)
	require.True(t, ok)

	s, c := tg.CreateSurface(harness.SurfaceRequest{Name: NativeGPU, Content: harness.ContentColorAlpha, Width: 0.5, Height: 300})
	require.NotNil(t, s)
	assert.Equal(t, 1, s.Width())
	assert.Equal(t, 300, s.Height())

	g, err := halgpu.DeviceOf(c.Device())
	require.NoError(t, err)
	assert.Equal(t, uint32(4), g.Samples())

	require.NoError(t, tg.Sync(c))
	tg.Release(c)
	assert.True(t, c.Device().Handle().Released())
}
