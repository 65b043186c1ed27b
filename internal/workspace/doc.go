// Package workspace manages staging directories for rendering.
//
// The engine writes into a staging directory created inside the destination
// directory. Commit moves the produced files into the destination with
// renames on the same filesystem, so a reader never sees a half written
// artifact. Cleanup discards the staging directory and everything in it.
package workspace
