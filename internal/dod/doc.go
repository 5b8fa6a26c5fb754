// Package dod computes DEM-of-difference change surfaces.
//
// Responsibilities: cell-wise differencing of an aligned grid pair,
// root-sum-of-squares propagation of per-source vertical uncertainty, the
// minimum-level-of-detection significance filter, and zonal change
// statistics (erosion/deposition areas and volumes) over the result.
//
// The engine accepts only raster.AlignedPair values; handing it grids on
// different lattices is a caller bug and reported as raster.ErrShapeMismatch.
// All computation is pure and in-memory; per-cell work is row-partitioned
// across a worker pool.
package dod
