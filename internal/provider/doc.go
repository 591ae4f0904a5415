// Package provider is the metadata entry point used when building rule trees.
//
// A Provider resolves the metadata of a class cache-aside: it first looks in
// its in-process memo, then in the on-disk cache, and only on a miss reads the
// declarations and builds them. The whole multi-subset result is stored, so a
// later request for another subset of the same class is a hit. Concurrent
// misses for one class are collapsed into a single build.
//
// Cache failures are logged and never fail a request. Asking for a subset the
// class does not declare is a configuration error.
package provider
