//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

//go:build unix

package artifact

import (
	"errors"
	"os"
	"syscall"
)

// flockExclusive takes a non-blocking exclusive advisory lock on f.
// A lock held by any other descriptor maps to ErrBusy.
func flockExclusive(f *os.File) error {
	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		if errors.Is(err, syscall.EWOULDBLOCK) {
			return ErrBusy
		}
		return err
	}
	return nil
}

// flockRelease drops the advisory lock. Closing the descriptor releases it
// as well; the explicit unlock keeps the release point visible.
func flockRelease(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
