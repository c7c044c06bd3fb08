// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Initialization errors. All of them are fatal: the viewer has no
// degraded-rendering fallback.
var (
	// ErrNoBackend is returned when no usable GPU backend is compiled in
	// or available on this machine.
	ErrNoBackend = errors.New("render: no usable GPU backend available")

	// ErrNoAdapter is returned when the backend exposes no GPU adapters.
	ErrNoAdapter = errors.New("render: no GPU adapters found")

	// ErrBadProvider is returned when an external device provider does
	// not expose HAL device and queue handles.
	ErrBadProvider = errors.New("render: device provider does not expose HAL types")
)

// gpuHandles bundles the device-level objects a renderer needs, plus
// ownership: handles acquired by acquireDevice are destroyed on Close,
// handles received from an external provider are not.
type gpuHandles struct {
	instance hal.Instance
	device   hal.Device
	queue    hal.Queue
	owned    bool
}

// acquireDevice creates a standalone HAL instance, picks an adapter
// (preferring discrete, then integrated GPUs), and opens a device.
func acquireDevice() (gpuHandles, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return gpuHandles{}, ErrNoBackend
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return gpuHandles{}, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return gpuHandles{}, ErrNoAdapter
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return gpuHandles{}, fmt.Errorf("open device: %w", err)
	}

	Logger().Info("render: GPU adapter selected",
		"adapter", selected.Info.Name,
		"type", selected.Info.DeviceType)
	return gpuHandles{
		instance: instance,
		device:   openDev.Device,
		queue:    openDev.Queue,
		owned:    true,
	}, nil
}

// handlesFromProvider extracts HAL device and queue from an external
// device provider. The provider must implement HalDevice() any and
// HalQueue() any returning hal.Device and hal.Queue.
func handlesFromProvider(provider any) (gpuHandles, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return gpuHandles{}, ErrBadProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return gpuHandles{}, fmt.Errorf("%w: HalDevice is not hal.Device", ErrBadProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return gpuHandles{}, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrBadProvider)
	}
	return gpuHandles{device: device, queue: queue}, nil
}

// release destroys owned handles. External handles stay untouched — the
// host retains ownership.
func (h *gpuHandles) release() {
	if !h.owned {
		return
	}
	if h.device != nil {
		h.device.Destroy()
		h.device = nil
	}
	if h.instance != nil {
		h.instance.Destroy()
		h.instance = nil
	}
	h.queue = nil
}
