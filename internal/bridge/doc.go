// Package bridge accepts thumbnail requests in their wire shape, runs them on
// the worker pool and hands back exactly one Response per request over a
// channel.
//
// Errors are reduced to two codes: "no_thumbnail" when no frame could be
// decoded and "exception" for everything else. A mode other than "data" or
// "file" yields a NotImplemented response.
package bridge
