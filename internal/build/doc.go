// Package build is the incremental file-set build driver.
//
// A Request describes one batch: where the diagram sources are, where their
// artifacts go, which format to produce and how the engine is tuned. It can
// only be obtained from NewRequest and cannot change afterwards.
//
// Builder resolves the request into input files, skips those whose artifact
// is newer than the source, and hands each stale file to a renderer.Engine.
// A failed render is recorded on the Result and the batch continues; only
// configuration and filesystem errors abort it. All execution paths (the
// generate command, watch mode, tests) route through Service.
package build
