// Package effects provides the sampler's effect kernels.
//
//   - Waveshaper / MakeDistortionCurve: table-driven distortion.
//   - FeedbackDelay: wet-only delay with a gain in the feedback loop.
//   - Bitcrusher / Bitcrush: quantization plus sample-and-hold downsampling.
//
// Every kernel is mono and stateful; multi-channel callers keep one
// instance per channel. The same kernels run in the live preview graph and
// in offline renders, so a previewed effect and its frozen result match.
package effects
