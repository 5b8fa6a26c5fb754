// Package report renders profiles, summaries, and change surfaces for
// export: CSV records, gonum/plot PNG cross-section plots, and go-echarts
// HTML charts.
//
// This is the "results consumer" side of the core boundary: it consumes
// Profile, ProfileSummary, and ChangeGrid values and has no dependency back
// into the computation.
package report
