// Package eq implements the sampler's 10-band graphic equalizer: the band
// layout, the gain state edited by sliders and the draw gesture, and the
// coefficient design shared by the live filter nodes and the offline bake.
//
// Band i sits at Frequencies[i]. The lowest band is a low shelf, the
// highest a high shelf, and every band in between a peaking filter.
// Coefficients follow the RBJ cookbook; peaking bands use Q = 1 and the
// shelves use a shelf slope of 1.
package eq
