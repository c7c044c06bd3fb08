// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render implements the WebGPU point renderer behind the viewer.
//
// Points are drawn as instanced quads: the vertex buffer holds one world
// position per point (step mode instance), the vertex shader expands each
// instance to a two-triangle quad sized in device pixels, and the fragment
// shader discards outside the inscribed circle. Every frame is two draws
// at most: all points with the base uniforms, then the selected instance
// again with the highlight uniforms on top.
package render

import (
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/points.wgsl
var pointShaderSource string

// pointVertexStride is the byte stride per instance: one world position
// (vec2<f32>) at location 0.
const pointVertexStride = 8

// quadVertexCount is the number of vertices the shader expands each
// instance to (two triangles).
const quadVertexCount = 6

// ErrNoFrame is returned by ReadPixels before the first completed frame.
var ErrNoFrame = errors.New("render: no frame rendered yet")

// FrameParams is one frame's complete render input. Positions is nil
// unless the point set changed since the previous frame; the renderer
// keeps the uploaded vertex buffer across frames.
type FrameParams struct {
	// Positions holds interleaved x,y world coordinates to upload, or nil
	// to reuse the previously uploaded set.
	Positions []float32

	// Count is the number of point instances to draw.
	Count uint32

	// Scale, Tx, Ty are the world-to-NDC view transform.
	Scale, Tx, Ty float32

	// PointSizePx and HighlightSizePx are quad diameters in device pixels.
	PointSizePx     float32
	HighlightSizePx float32

	// Selected is the index of the highlighted instance, or negative for
	// no highlight.
	Selected int32

	// Straight-alpha colors.
	Background [4]float32
	Base       [4]float32
	Highlight  [4]float32
}

// Renderer renders point clouds to an offscreen MSAA target with CPU
// readback. Not safe for concurrent use; the viewer serializes all calls.
type Renderer struct {
	handles gpuHandles

	// Pipeline objects, created once at construction.
	shader        hal.ShaderModule
	uniformLayout hal.BindGroupLayout
	pipeLayout    hal.PipelineLayout
	pipeline      hal.RenderPipeline

	// Persistent per-point vertex buffer, grown as the point set grows.
	vertexBuf hal.Buffer
	vertexCap uint64

	// Uniform buffers and bind groups for the two draw passes. Contents
	// are rewritten every frame; the GPU objects persist.
	baseUniform      hal.Buffer
	baseBind         hal.BindGroup
	highlightUniform hal.Buffer
	highlightBind    hal.BindGroup

	targets targetSet
	width   uint32
	height  uint32

	rendered bool
}

// New creates a renderer with its own GPU device, targeting a backing
// buffer of the given size in device pixels.
func New(width, height uint32) (*Renderer, error) {
	handles, err := acquireDevice()
	if err != nil {
		return nil, err
	}
	r, err := newRenderer(handles, width, height)
	if err != nil {
		handles.release()
		return nil, err
	}
	return r, nil
}

// NewWithProvider creates a renderer on a host-owned GPU device. The
// provider must expose HAL device and queue handles; the renderer never
// destroys them.
func NewWithProvider(provider any, width, height uint32) (*Renderer, error) {
	handles, err := handlesFromProvider(provider)
	if err != nil {
		return nil, err
	}
	return newRenderer(handles, width, height)
}

func newRenderer(handles gpuHandles, width, height uint32) (*Renderer, error) {
	r := &Renderer{
		handles: handles,
		width:   width,
		height:  height,
	}
	if err := r.createPipeline(); err != nil {
		r.destroyResources()
		return nil, err
	}
	if err := r.createUniforms(); err != nil {
		r.destroyResources()
		return nil, err
	}
	return r, nil
}

// createPipeline compiles the point shader and builds the instanced-quad
// render pipeline with premultiplied alpha blending and MSAA.
func (r *Renderer) createPipeline() error {
	shader, err := createShaderModule(r.handles.device, "points_shader", pointShaderSource)
	if err != nil {
		return fmt.Errorf("compile point shader: %w", err)
	}
	r.shader = shader

	uniformLayout, err := r.handles.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "points_uniform_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create uniform layout: %w", err)
	}
	r.uniformLayout = uniformLayout

	pipeLayout, err := r.handles.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "points_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{r.uniformLayout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}
	r.pipeLayout = pipeLayout

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := r.handles.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "points_pipeline",
		Layout: r.pipeLayout,
		Vertex: hal.VertexState{
			Module:     r.shader,
			EntryPoint: "vs_main",
			Buffers:    pointVertexLayout(),
		},
		Fragment: &hal.FragmentState{
			Module:     r.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatBGRA8Unorm,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: sampleCount,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create point pipeline: %w", err)
	}
	r.pipeline = pipeline

	return nil
}

// createUniforms allocates the two persistent uniform buffers and their
// bind groups. Contents are written per frame.
func (r *Renderer) createUniforms() error {
	var err error
	r.baseUniform, r.baseBind, err = r.createUniformSlot("points_base")
	if err != nil {
		return err
	}
	r.highlightUniform, r.highlightBind, err = r.createUniformSlot("points_highlight")
	return err
}

func (r *Renderer) createUniformSlot(label string) (hal.Buffer, hal.BindGroup, error) {
	buf, err := r.handles.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label + "_uniform",
		Size:  pointUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create %s uniform: %w", label, err)
	}
	bind, err := r.handles.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  label + "_bind",
		Layout: r.uniformLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(), Offset: 0, Size: pointUniformSize,
			}},
		},
	})
	if err != nil {
		r.handles.device.DestroyBuffer(buf)
		return nil, nil, fmt.Errorf("create %s bind group: %w", label, err)
	}
	return buf, bind, nil
}

// pointVertexLayout returns the instance buffer layout: one world
// position per instance, expanded to a quad in the vertex shader.
func pointVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: pointVertexStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			},
		},
	}
}

// Resize sets the backing buffer size in device pixels. Target textures
// are recreated lazily on the next Frame call.
func (r *Renderer) Resize(width, height uint32) {
	r.width = width
	r.height = height
}

// ensureVertexCapacity grows the persistent vertex buffer to hold at
// least needed bytes. Growth doubles to amortize reallocation during
// incremental appends.
func (r *Renderer) ensureVertexCapacity(needed uint64) error {
	if r.vertexBuf != nil && r.vertexCap >= needed {
		return nil
	}
	newCap := r.vertexCap * 2
	if newCap < needed {
		newCap = needed
	}
	if r.vertexBuf != nil {
		r.handles.device.DestroyBuffer(r.vertexBuf)
		r.vertexBuf = nil
	}
	buf, err := r.handles.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "points_verts",
		Size:  newCap,
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		r.vertexCap = 0
		return fmt.Errorf("create vertex buffer: %w", err)
	}
	r.vertexBuf = buf
	r.vertexCap = newCap
	Logger().Debug("render: vertex buffer grown", "bytes", newCap)
	return nil
}

// Frame renders one complete frame: clear to the background color, draw
// all points, then redraw the selected instance with the highlight
// uniforms. The call blocks until the GPU finishes.
func (r *Renderer) Frame(p FrameParams) error {
	if r.width == 0 || r.height == 0 {
		return nil
	}
	if err := r.targets.ensure(r.handles.device, r.width, r.height); err != nil {
		return fmt.Errorf("ensure targets: %w", err)
	}

	if len(p.Positions) > 0 {
		if err := r.ensureVertexCapacity(uint64(len(p.Positions)) * 4); err != nil {
			return err
		}
		r.handles.queue.WriteBuffer(r.vertexBuf, 0, float32Bytes(p.Positions))
	}

	base := makePointUniforms(p.Scale, p.Tx, p.Ty, p.PointSizePx, r.width, r.height, p.Base)
	r.handles.queue.WriteBuffer(r.baseUniform, 0, base.bytes())
	highlight := makePointUniforms(p.Scale, p.Tx, p.Ty, p.HighlightSizePx, r.width, r.height, p.Highlight)
	r.handles.queue.WriteBuffer(r.highlightUniform, 0, highlight.bytes())

	encoder, err := r.handles.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "points_encoder",
	})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("points_frame"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}

	bg := p.Background
	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "points_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:          r.targets.msaaView,
			ResolveTarget: r.targets.resolveView,
			LoadOp:        gputypes.LoadOpClear,
			StoreOp:       gputypes.StoreOpStore,
			ClearValue: gputypes.Color{
				R: float64(bg[0] * bg[3]),
				G: float64(bg[1] * bg[3]),
				B: float64(bg[2] * bg[3]),
				A: float64(bg[3]),
			},
		}},
	})

	if p.Count > 0 && r.vertexBuf != nil {
		rp.SetPipeline(r.pipeline)
		rp.SetVertexBuffer(0, r.vertexBuf, 0)

		rp.SetBindGroup(0, r.baseBind, nil)
		rp.Draw(quadVertexCount, p.Count, 0, 0)

		if p.Selected >= 0 && uint32(p.Selected) < p.Count {
			rp.SetBindGroup(0, r.highlightBind, nil)
			rp.Draw(quadVertexCount, 1, 0, uint32(p.Selected))
		}
	}

	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer r.handles.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.handles.device.CreateFence()
	if err != nil {
		return fmt.Errorf("create fence: %w", err)
	}
	defer r.handles.device.DestroyFence(fence)

	if err := r.handles.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := r.handles.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	r.rendered = true
	return nil
}

// ReadPixels copies the last resolved frame back to the CPU and returns
// tightly packed RGBA pixels. Returns ErrNoFrame before the first
// completed frame.
func (r *Renderer) ReadPixels() ([]byte, uint32, uint32, error) {
	if !r.rendered || r.targets.resolveTex == nil {
		return nil, 0, 0, ErrNoFrame
	}
	w, h := r.targets.width, r.targets.height

	encoder, err := r.handles.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "points_readback_encoder",
	})
	if err != nil {
		return nil, 0, 0, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("points_readback"); err != nil {
		return nil, 0, 0, fmt.Errorf("begin encoding: %w", err)
	}

	// After the MSAA resolve the texture sits in render-attachment
	// layout; CopyTextureToBuffer needs a transfer-source transition.
	// This is a no-op on backends without explicit layouts.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.targets.resolveTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})

	// Copy pitch must be 256-byte aligned.
	bytesPerRow := w * 4
	const copyPitchAlignment = 256
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	stagingBuf, err := r.handles.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "points_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		encoder.DiscardEncoding()
		return nil, 0, 0, fmt.Errorf("create staging buffer: %w", err)
	}
	defer r.handles.device.DestroyBuffer(stagingBuf)

	encoder.CopyTextureToBuffer(r.targets.resolveTex, stagingBuf, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: r.targets.resolveTex, MipLevel: 0},
		Size:         hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
	}})

	// Return to render-attachment layout so the next frame's resolve
	// finds the texture where it expects it.
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: r.targets.resolveTex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("end encoding: %w", err)
	}
	defer r.handles.device.FreeCommandBuffer(cmdBuf)

	fence, err := r.handles.device.CreateFence()
	if err != nil {
		return nil, 0, 0, fmt.Errorf("create fence: %w", err)
	}
	defer r.handles.device.DestroyFence(fence)

	if err := r.handles.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return nil, 0, 0, fmt.Errorf("submit: %w", err)
	}
	fenceOK, err := r.handles.device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		return nil, 0, 0, fmt.Errorf("wait for GPU: ok=%v err=%w", fenceOK, err)
	}

	readback := make([]byte, stagingSize)
	if err := r.handles.queue.ReadBuffer(stagingBuf, 0, readback); err != nil {
		return nil, 0, 0, fmt.Errorf("readback: %w", err)
	}

	// Strip row padding and convert BGRA to RGBA in one pass.
	pix := make([]byte, uint64(bytesPerRow)*uint64(h))
	for row := uint32(0); row < h; row++ {
		src := readback[uint64(row)*uint64(alignedBytesPerRow):]
		dst := pix[uint64(row)*uint64(bytesPerRow):]
		for x := uint32(0); x < w; x++ {
			o := x * 4
			dst[o+0] = src[o+2]
			dst[o+1] = src[o+1]
			dst[o+2] = src[o+0]
			dst[o+3] = src[o+3]
		}
	}
	return pix, w, h, nil
}

// Close releases all GPU resources. Owned device handles are destroyed;
// provider-owned handles are left alone. Safe to call more than once.
func (r *Renderer) Close() {
	r.destroyResources()
	r.handles.release()
}

// destroyResources releases pipeline and buffer objects in reverse
// creation order.
func (r *Renderer) destroyResources() {
	device := r.handles.device
	if device == nil {
		return
	}
	r.targets.destroy(device)
	if r.highlightBind != nil {
		device.DestroyBindGroup(r.highlightBind)
		r.highlightBind = nil
	}
	if r.highlightUniform != nil {
		device.DestroyBuffer(r.highlightUniform)
		r.highlightUniform = nil
	}
	if r.baseBind != nil {
		device.DestroyBindGroup(r.baseBind)
		r.baseBind = nil
	}
	if r.baseUniform != nil {
		device.DestroyBuffer(r.baseUniform)
		r.baseUniform = nil
	}
	if r.vertexBuf != nil {
		device.DestroyBuffer(r.vertexBuf)
		r.vertexBuf = nil
		r.vertexCap = 0
	}
	if r.pipeline != nil {
		device.DestroyRenderPipeline(r.pipeline)
		r.pipeline = nil
	}
	if r.pipeLayout != nil {
		device.DestroyPipelineLayout(r.pipeLayout)
		r.pipeLayout = nil
	}
	if r.uniformLayout != nil {
		device.DestroyBindGroupLayout(r.uniformLayout)
		r.uniformLayout = nil
	}
	if r.shader != nil {
		device.DestroyShaderModule(r.shader)
		r.shader = nil
	}
	r.rendered = false
}
