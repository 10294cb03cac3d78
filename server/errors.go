package server

import "errors"

var (
	// Handle errors

	ErrInvalidHandle    = errors.New("invalid handle")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrIndexOutOfRange  = errors.New("shape index out of range")
	ErrShapeInUse       = errors.New("shape already owned by another object")
	ErrDefaultAreaOwned = errors.New("default area is owned by its space")

	// Capability errors

	// ErrNotImplemented marks entry points this binding does not wire yet
	ErrNotImplemented = errors.New("not implemented")
	// ErrUnsupported marks features the engine cannot provide at all
	ErrUnsupported         = errors.New("not supported by the engine")
	ErrSoftBodyUnsupported = errors.New("soft bodies are not supported")

	// Frame protocol errors

	ErrStateUnavailable = errors.New("space state is inaccessible outside the sync window or while the space is stepping")
	ErrReentrantStep    = errors.New("step called while stepping or flushing queries")
	ErrSyncWindowOpen   = errors.New("step called while the sync window is open")
	ErrSpaceLocked      = errors.New("space is locked while stepping")
	ErrNotInitialized   = errors.New("server not initialized")
)
