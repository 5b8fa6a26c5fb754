// Package raster owns the regular elevation grid model.
//
// Responsibilities: the immutable Grid type (flat row-major buffer with an
// explicit validity mask), world/cell coordinate conversion, bilinear surface
// sampling, and the aligner that resamples two grids onto a single common
// lattice so cell-wise arithmetic is valid.
//
// Dependency rule: raster depends on the standard library only. Higher layers
// (dod, transect) depend on raster, never the reverse. No file I/O is allowed
// in this package; decoding DEM files belongs to geoio.
package raster
