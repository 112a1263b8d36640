// Package resample converts audio between sample rates with a polyphase
// FIR resampler.
//
// [Resampler] streams one channel block by block. [Buffer] converts a
// whole planar buffer and removes the filter latency, so an event at time t
// in the input lands at time t in the output.
//
// Quality modes trade taps for stopband attenuation:
//
//	mode            taps/phase   nominal stopband
//	QualityFast     16           ~55 dB
//	QualityBalanced 32           ~75 dB
//	QualityBest     64           ~90 dB
package resample
