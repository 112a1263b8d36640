// Package buffer provides the multi-channel sample buffer used throughout
// the sampler, the pure editing operations on it (slice, reverse, splice,
// gain, normalization), and a pool for render scratch blocks.
//
// A Buffer is treated as an immutable value once it has been handed to
// another component: every editing operation returns a new Buffer and
// leaves its input untouched. The one exception is ScaleRange, which
// callers apply to a freshly rendered buffer before publishing it.
package buffer
