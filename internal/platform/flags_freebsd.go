//go:build freebsd

package platform

// sendfile(2) flags from <sys/socket.h>; forwarded untouched in Request.Flags.
const (
	SF_NODISKIO = 0x00000001 //nolint:revive,stylecheck // kernel name
	SF_MNOWAIT  = 0x00000002 //nolint:revive,stylecheck // kernel name
	SF_SYNC     = 0x00000004 //nolint:revive,stylecheck // kernel name
)

func init() {
	definedFlags = map[string]int{
		"SF_NODISKIO": SF_NODISKIO,
		"SF_MNOWAIT":  SF_MNOWAIT,
		"SF_SYNC":     SF_SYNC,
	}
}
