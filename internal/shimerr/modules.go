package shimerr

// Package code offsets: every package that registers error codes reserves
// a block of 100 so two packages' codes never collide.
const (
	MinPkgArchiveReader CodeError = iota*100 + 100
	MinPkgEncodingGuard
	MinPkgActionsXML
	MinPkgDiscovery
	MinPkgExtract
	MinPkgShimeji
)
