package coder

// Zstd (7-zip custom method ID 04 04 05) has two backends: the pure-Go
// github.com/klauspost/compress/zstd implementation is registered by
// default (zstd_pure.go, build tag !gozstd), and a cgo-backed
// github.com/valyala/gozstd variant (zstd_cgo.go, build tag gozstd) is
// available for anyone building with `-tags gozstd` but excluded from
// ordinary builds. The build tags are complementary so exactly one of the
// two always registers the Zstd entry.
