// Package errors provides the classified error primitives used across umlbuilder.
//
// Every fatal condition raised by the build driver is a ClassifiedError carrying
// a category (config, validation, filesystem, render, ...), a severity and a
// retry strategy. The CLI adapter maps categories to process exit codes.
//
// Example usage:
//
//	err := errors.NewError(errors.CategoryFileSystem, "cannot create output directory").
//		Fatal().
//		WithContext("dir", outDir).
//		WithCause(mkdirErr).
//		Build()
package errors
