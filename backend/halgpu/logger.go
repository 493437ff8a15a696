// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package halgpu

import (
	"log/slog"

	harness "github.com/gogpu/gg-harness"
)

func logger() *slog.Logger { return harness.Logger() }
