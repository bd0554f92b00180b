// Package compiler persists a compiled di.Container as a cache artifact and
// restores it without re-reading configuration.
//
// Artifact layout:
//
//	offset  size  content
//	0       4     magic "MKC1"
//	4       32    BLAKE3 digest of the payload
//	36      ...   zstd-compressed CBOR payload
//
// The payload holds the container snapshot and, optionally, the list of
// configuration files (with modification times) the container was built
// from. Service references inside definition arguments are encoded as a
// dedicated CBOR tag so they survive the round trip as di.Reference values.
//
// Files are written to a temporary sibling and renamed into place, so a
// concurrent reader sees either the previous artifact or the complete new
// one, never a truncated file.
package compiler
