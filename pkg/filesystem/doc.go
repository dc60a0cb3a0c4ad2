// Package filesystem provides the platform-specific filesystem primitives used
// by the scanner and deduplicator: directory traversal by file descriptor,
// metadata queries that expose volume and file identifiers, atomic file
// installation, and rename/unlink operations.
package filesystem
