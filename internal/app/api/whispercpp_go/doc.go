// Package whispercpp_go runs whisper.cpp in-process through its cgo bindings.
// Without the whispercpp build tag the package is empty and the engine is
// not registered.
package whispercpp_go
