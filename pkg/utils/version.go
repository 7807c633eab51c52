// Package utils holds small one-off helpers that don't warrant a package of
// their own.
package utils

// Populated at build time through -ldflags; see the release pipeline.
var (
	Version   = "dev"
	Sha       = "HEAD"
	Buildtime = "dev"
)
