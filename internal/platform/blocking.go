package platform

// testHookKernelCall, when set, is called before every kernel entry.
var testHookKernelCall func(op string) //nolint:gochecknoglobals // test hook

// blocking runs fn, which issues the kernel call(s) for one transfer.
//
// Kernel entry goes through syscall.Syscall-class functions (or cgo), both
// of which release the goroutine's P for the duration, so other goroutines
// keep running. No lock in this package is held across fn; only the
// descriptors' own kernel locks apply.
func blocking(op string, fn func()) {
	if testHookKernelCall != nil {
		testHookKernelCall(op)
	}
	fn()
}
