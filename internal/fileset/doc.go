// Package fileset turns an input description into the ordered list of diagram
// sources a build should look at, and decides where each one's artifacts go.
//
// Two input styles exist. SingleDirectory scans one directory without recursing
// and selects files carrying one of the extensions the engine understands.
// FileSet walks a base directory recursively and keeps every file whose
// base-relative, forward-slash path matches at least one include glob and no
// exclude glob.
package fileset
