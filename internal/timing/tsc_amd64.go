//go:build amd64 && !noasm

// On amd64 TSC reads the unserialized RDTSC counter directly; the
// implementation lives in tsc_amd64.s, split between a thin Go
// declaration and a hand-written assembly body for the instruction
// that matters.

package timing

//go:noescape
func tscAsm() uint64

// TSC reads the CPU cycle counter.
//
//go:nosplit
func TSC() uint64 {
	return tscAsm()
}
