// Package adaptel computes adaptel segmentations: partitions of an image
// into contiguous regions grown best-first from a seed until adding any
// further pixel would push the region's cumulative information (surprise)
// past a threshold.
//
// A run grows one region at a time. Each region keeps an online model of
// its mean and charges every admitted pixel k * |v - mean|. Candidates are
// admitted in order of increasing information through a priority queue that
// tolerates stale duplicates. A least-information map shared by the whole
// run records the best score each pixel has ever been offered, so a pixel
// that fitted an earlier region well is not handed to a worse one. The next
// seed is taken from the frontier of the labeled territory, either the first
// frontier pixel in row-major order or a reproducibly shuffled one.
//
// Regions depend on the least-information map left by their predecessors,
// so a run is strictly sequential. Separate runs share no state.
package adaptel
