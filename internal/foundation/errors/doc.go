// Package errors provides classified error primitives used across adocxref.
//
// Errors carry a category (config, content, resolve, git, ...), a severity and
// structured context. The builder keeps construction uniform:
//
//	err := errors.WrapError(cause, errors.CategoryGit, "resolve revision").
//		WithContext("revision", rev).
//		Build()
//
// The CLI adapter maps categories to process exit codes.
package errors
