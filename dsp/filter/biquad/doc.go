// Package biquad is the second-order IIR runtime behind the equalizer.
//
// [Coefficients] describe one section and its frequency response. A
// [Section] adds Direct Form II Transposed state; the live graph keeps one
// per channel and band so gain changes keep the filter running. [Cascade]
// is the whole band list, used for response curves. Coefficient design
// lives in dsp/eq.
package biquad
