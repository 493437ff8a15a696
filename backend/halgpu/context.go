// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/wgpu/hal"
)

// fenceTimeout bounds a single fence wait.
const fenceTimeout = 5 * time.Second

// errFenceTimeout is reported when a fence does not signal within fenceTimeout.
var errFenceTimeout = errors.New("halgpu: fence timeout")

// submission is a command buffer in flight.
type submission struct {
	cmd   hal.CommandBuffer
	fence hal.Fence
}

// gpuContext is the native context of a hal device: one logical device
// and its queue. Surfaces of the device bind to it.
type gpuContext struct {
	label    string
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	cfg      *pixelConfig

	mu      sync.Mutex
	pending []submission
	waits   int
}

// submit queues cmd and tracks it until the next wait. Ownership of cmd
// passes to the context.
func (c *gpuContext) submit(cmd hal.CommandBuffer) error {
	fence, err := c.device.CreateFence()
	if err != nil {
		c.device.FreeCommandBuffer(cmd)
		return fmt.Errorf("halgpu: create fence: %w", err)
	}
	if err := c.queue.Submit([]hal.CommandBuffer{cmd}, fence, 1); err != nil {
		c.device.DestroyFence(fence)
		c.device.FreeCommandBuffer(cmd)
		return fmt.Errorf("halgpu: submit: %w", err)
	}
	c.mu.Lock()
	c.pending = append(c.pending, submission{cmd: cmd, fence: fence})
	c.mu.Unlock()
	return nil
}

// wait blocks until every tracked submission has completed and then
// submits an empty batch behind a fresh fence, so work submitted by other
// users of the queue is covered too.
func (c *gpuContext) wait() error {
	c.mu.Lock()
	pending := c.pending
	c.pending = nil
	c.waits++
	c.mu.Unlock()

	var firstErr error
	for _, s := range pending {
		if err := c.waitFence(s.fence); err != nil && firstErr == nil {
			firstErr = err
		}
		c.device.DestroyFence(s.fence)
		c.device.FreeCommandBuffer(s.cmd)
	}
	if firstErr != nil {
		return firstErr
	}

	fence, err := c.device.CreateFence()
	if err != nil {
		return fmt.Errorf("halgpu: create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)
	if err := c.queue.Submit(nil, fence, 1); err != nil {
		return fmt.Errorf("halgpu: submit: %w", err)
	}
	return c.waitFence(fence)
}

func (c *gpuContext) waitFence(fence hal.Fence) error {
	ok, err := c.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("halgpu: wait for GPU: %w", err)
	}
	if !ok {
		return errFenceTimeout
	}
	return nil
}

// Pending returns the number of submissions not yet waited on.
func (c *gpuContext) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// destroy releases the logical device and instance. Outstanding work is
// waited on first.
func (c *gpuContext) destroy() {
	if c.Pending() > 0 {
		if err := c.wait(); err != nil {
			logger().Warn("halgpu: drain before destroy", "label", c.label, "err", err)
		}
	}
	c.device.Destroy()
	c.instance.Destroy()
	logger().Debug("halgpu: device destroyed", "label", c.label)
}
