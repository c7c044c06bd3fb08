// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "unsafe"

// pointUniformSize is the byte size of pointUniforms. WebGPU requires
// uniform buffer bindings to be 16-byte aligned; three vec4s satisfy
// that naturally.
const pointUniformSize = 48

// pointUniforms is the uniform block for the point pipeline. Field
// layout must match struct Uniforms in shaders/points.wgsl:
//
//	transform: vec4<f32>  (scale, tx, ty, point size in device pixels)
//	viewport:  vec4<f32>  (width, height in device pixels, 2x padding)
//	color:     vec4<f32>  (straight-alpha point color)
type pointUniforms struct {
	Transform [4]float32
	Viewport  [4]float32
	Color     [4]float32
}

// makePointUniforms packs one uniform block. The base and highlight
// passes share everything except size and color.
func makePointUniforms(scale, tx, ty, sizePx float32, w, h uint32, color [4]float32) pointUniforms {
	return pointUniforms{
		Transform: [4]float32{scale, tx, ty, sizePx},
		Viewport:  [4]float32{float32(w), float32(h), 0, 0},
		Color:     color,
	}
}

// bytes returns the uniform block as a byte slice viewing the struct's
// memory. Valid only while u is alive; WriteBuffer copies immediately.
func (u *pointUniforms) bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), pointUniformSize)
}

// float32Bytes views a float32 slice as bytes for buffer upload.
func float32Bytes(s []float32) []byte {
	if len(s) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&s[0])), len(s)*4)
}
