//go:build amd64 && !noasm

// Go declaration for cpuRelax on amd64. The implementation lives in
// relax_amd64.s and emits a single PAUSE instruction so CAS-retry spins
// back off politely without leaving userspace.

package ring

//go:noescape
func cpuRelax()
