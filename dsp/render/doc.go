// Package render produces committed audio offline.
//
// RenderEffect bakes one effect into a time range of a buffer and leaves
// every sample outside that range bit-identical. Bake and Export run the
// whole buffer through the equalizer and master gain, which is what the
// listener hears once no preview is active, and Export peak-normalizes and
// encodes the result as 16-bit WAV.
//
// All rendering uses a disposable graph.Offline, so the same node
// implementations serve the live chain and the committed result.
package render
