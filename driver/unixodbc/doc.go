// Package unixodbc implements api.API with cgo bindings to the unixODBC
// driver manager.
//
// The bindings are compiled only with cgo enabled and the unixodbc build
// tag, so that the rest of the module builds on machines without the
// unixODBC headers:
//
//	go build -tags unixodbc ./...
//
// Linking requires libodbc (the unixodbc-dev package on Debian and Ubuntu).
// The bindings assume a 64-bit SQLLEN, which is the unixODBC default on
// 64-bit platforms.
package unixodbc
