// Package generator provides the number generators that drive key, field length and scan
// length selection: constant, uniform, counter, zipfian, scrambled zipfian, skewed latest,
// hotspot, exponential and histogram distributions.
//
// Every generator implements Generator and is safe for concurrent use as long as its Rand is.
// The default Rand is backed by the concurrency-safe top-level functions of math/rand/v2;
// NewRand returns a seeded, mutex-guarded source for reproducible runs and tests.
package generator
