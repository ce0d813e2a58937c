// Package profile provides optional runtime profiling for masexpr.
//
// # Overview
//
// This package wraps [github.com/pkg/profile]. Profiling is off unless a mode
// is selected, in which case profile data is written to a directory when the
// returned [Profiler] is stopped.
//
// # Available Profiling Modes
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// Use [Modes] to retrieve the list of supported modes programmatically.
//
// # Usage
//
//	p, err := profile.Start(
//	    profile.WithMode("cpu"),
//	    profile.WithPath("/tmp/profiles"),
//	)
//	if err != nil {
//	    return err
//	}
//	defer p.Stop()
//
// Profile files are written to the specified directory with names matching
// the profiling mode (e.g., cpu.pprof, mem.pprof).
//
// # Command-Line Usage
//
//	# CPU profile of a batch compile (writes to the default cache directory)
//	masexpr --pprof-mode cpu compile -s expressions.txt
//
//	# Heap profile with custom output directory
//	masexpr --pprof-mode heap --pprof-dir ./profiles eval 'a * b'
//
// The default output directory is:
//
//	$XDG_CACHE_HOME/masexpr/pprof   (Linux/Unix)
//	~/Library/Caches/masexpr/pprof  (macOS)
//	%LocalAppData%\masexpr\pprof    (Windows)
//
// # Analyzing Profile Data
//
//	go tool pprof -http=: /tmp/profiles/cpu.pprof
//	go tool pprof -base=old.pprof new.pprof
package profile

// Tag is the name of the profiling flag group and of the default output
// subdirectory.
const Tag = `pprof`
