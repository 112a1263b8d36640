// Package design provides RBJ biquad coefficient designers for the
// equalizer's shelf and peaking bands.
//
// Every designer returns coefficients consumable by dsp/filter/biquad.
// Frequencies at or above Nyquist, or an invalid sample rate, yield
// [biquad.Identity] so a band that cannot be realised stays transparent.
package design
