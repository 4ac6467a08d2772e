//go:build !linux && !darwin && !solaris && !(aix && cgo) && !((freebsd || dragonfly) && !386 && !arm)

package platform

var defaultStrategy Strategy = unsupportedStrategy{} //nolint:gochecknoglobals // build-time selection

// unsupportedStrategy is compiled in where no kernel primitive is wired.
type unsupportedStrategy struct{}

func (unsupportedStrategy) Method() Method { return Unsupported }

func (unsupportedStrategy) Transfer(Request, int64) Outcome {
	return failed(ErrUnsupported)
}
