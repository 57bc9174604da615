//
// Tencent is pleased to support the open source community by making trpc-llmeval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-llmeval-go is licensed under the Apache License Version 2.0.
//
//

//go:build !unix

package artifact

import "os"

// Platforms without flock(2) fall back to the temp-file+rename protocol
// alone. Single-process writers stay safe; cross-process exclusion needs a
// unix host.
func flockExclusive(_ *os.File) error { return nil }

func flockRelease(_ *os.File) error { return nil }
