//go:build !linux

// Non-Linux platforms have no portable equivalent of sched_setaffinity;
// Pin becomes a documented no-op so callers don't need a build-tagged
// call site of their own.

package affinity

func setAffinity(cpu int) error {
	return nil
}
