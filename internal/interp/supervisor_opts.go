package interp

import "time"

type SupervisorOpt func(*Supervisor)

// WithExecutable sets the interpreter binary used when a game does not name its own.
func WithExecutable(path string) SupervisorOpt {
	return func(s *Supervisor) {
		s.executable = path
	}
}

// WithTerminalSize sets the width and height passed to the interpreter.
func WithTerminalSize(width, height int) SupervisorOpt {
	return func(s *Supervisor) {
		s.width = width
		s.height = height
	}
}

// WithStartupDelay sets how long stderr is watched for launch failures.
func WithStartupDelay(d time.Duration) SupervisorOpt {
	return func(s *Supervisor) {
		s.startupDelay = d
	}
}

// WithSettleDelay sets the pause before reading a response and the quiet
// period that ends a response.
func WithSettleDelay(d time.Duration) SupervisorOpt {
	return func(s *Supervisor) {
		s.settleDelay = d
	}
}

// WithResponseTimeout bounds how long a response may take to start.
func WithResponseTimeout(d time.Duration) SupervisorOpt {
	return func(s *Supervisor) {
		s.responseTimeout = d
	}
}

// WithReadLimit caps the bytes read for a single response.
func WithReadLimit(n int) SupervisorOpt {
	return func(s *Supervisor) {
		s.readLimit = n
	}
}

// WithEnv appends KEY=VALUE pairs to the interpreter environment.
func WithEnv(kv ...string) SupervisorOpt {
	return func(s *Supervisor) {
		s.env = append(s.env, kv...)
	}
}
