// Package wav encodes sample buffers as canonical 16-bit PCM WAV files and
// decodes PCM WAV files of any common bit depth back into buffers.
//
// The encoder is the sampler's one bit-exact external contract: a 44-byte
// header (RIFF, WAVE, "fmt " and data chunks) followed by interleaved
// little-endian signed 16-bit samples.
package wav
