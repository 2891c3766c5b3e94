// Package xr mirrors the OpenXR native surface in Go types.
//
// Handles, enums, flag bits and result codes carry their OpenXR values so
// that a cgo loader or a remote runtime can implement Runtime directly.
// Structure chains are modeled by Chain; extension records are prepended by
// callers and looked up with FindIn.
//
// The package holds no state. xr/sim provides an in-process Runtime.
package xr
