// Package geoio decodes and encodes the file formats the CLI glues onto the
// core: ESRI ASCII grid DEMs and CSV transect vertex lists.
//
// The core packages (raster, dod, transect) do no file I/O; this package is
// the "DEM source provider" and "transect geometry provider" side of that
// boundary. Inputs are assumed pre-reprojected to a common coordinate
// system; no CRS handling happens here or anywhere else in the repository.
package geoio
