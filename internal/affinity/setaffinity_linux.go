//go:build linux

// Linux binding for sched_setaffinity(2), pinning the current OS thread
// to a single logical CPU, via golang.org/x/sys/unix's CPUSet/
// SchedSetaffinity wrapper rather than driving the raw syscall
// directly through a precomputed mask table, for a typed,
// allocation-free call.

package affinity

import "golang.org/x/sys/unix"

func setAffinity(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	// pid 0 means the calling thread.
	return unix.SchedSetaffinity(0, &set)
}
