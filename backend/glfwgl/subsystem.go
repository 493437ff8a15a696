// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package glfwgl

import (
	"sync"

	harness "github.com/gogpu/gg-harness"
)

// subsystem counts users of the window system. The first acquire
// initializes it and the last release terminates it.
type subsystem struct {
	sys windowSystem

	mu    sync.Mutex
	users int
	inits int
	terms int
}

func (s *subsystem) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == 0 {
		if err := s.sys.Init(); err != nil {
			return err
		}
		s.inits++
	}
	s.users++
	return nil
}

func (s *subsystem) release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.users == 0 {
		harness.Logger().Warn("glfwgl: window system released more often than acquired")
		return
	}
	s.users--
	if s.users == 0 {
		s.sys.Terminate()
		s.terms++
	}
}

// counts returns users, initializations and terminations.
func (s *subsystem) counts() (users, inits, terms int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users, s.inits, s.terms
}
