// Package rewrite performs atomic, stream-copy rewrites of media containers:
// metadata tag changes and subtitle stream injection without re-encoding,
// with temp-file transactions that preserve the original on failure and its
// timestamps on success.
package rewrite
