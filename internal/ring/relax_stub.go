//go:build !amd64 || noasm

// Portable fall-back for non-amd64 builds or when assembly stubs are
// disabled.

package ring

func cpuRelax() {}
