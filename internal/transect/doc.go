// Package transect extracts cross-section profiles from elevation and
// change surfaces.
//
// Responsibilities: the Transect polyline type and its station walker,
// bilinear sampling of the older/newer/change surfaces at each station, the
// profile analyzer (trapezoidal cut/fill integration with nodata gaps), and
// perpendicular ortho-section generation along a centerline.
//
// Ordering is a contract: profiles are emitted in non-decreasing station
// distance and downstream consumers never re-sort.
package transect
