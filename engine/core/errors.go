package core

import (
	"errors"
)

var (
	// GPU object creation failed, usually out of memory or device lost.
	ErrResourceCreation = errors.New("resource creation failed")
	// A registry handle that is unknown or already removed.
	ErrInvalidHandle = errors.New("invalid handle")
	// The display surface could not hand over or take back an image.
	ErrFrameAcquisition = errors.New("frame acquisition failed")
	// A fence wait or reset call itself failed.
	ErrSynchronizationWait = errors.New("synchronization wait failed")
	// A ring slot was touched before its fence proved the GPU is done with it.
	ErrSlotInFlight     = errors.New("ring slot still in flight")
	ErrAlreadyDestroyed = errors.New("already destroyed")
)
