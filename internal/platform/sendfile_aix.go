//go:build aix && cgo

package platform

/*
#include <sys/types.h>
#include <sys/socket.h>
#include <errno.h>
#include <stdlib.h>

static int zc_send_file(int sock, struct sf_parms *p, int *err) {
	int rc;
	p->bytes_sent = 0;
	rc = send_file(&sock, p, SF_DONT_CACHE);
	*err = (rc == -1) ? errno : 0;
	return rc;
}
*/
import "C"

import (
	"runtime"
	"syscall"
)

var defaultStrategy Strategy = aixStrategy{} //nolint:gochecknoglobals // build-time selection

// aixStrategy wraps send_file(2). The kernel may ask to be called again
// (rc == 1); the whole loop runs inside one blocking section.
type aixStrategy struct{}

func (aixStrategy) Method() Method { return AIXSendFile }

func (aixStrategy) Transfer(req Request, offset int64) Outcome {
	var parms C.struct_sf_parms
	if len(req.Header) > 0 {
		parms.header_data = C.CBytes(req.Header)
		defer C.free(parms.header_data)
		parms.header_length = C.uint_t(len(req.Header))
	}
	if len(req.Trailer) > 0 {
		parms.trailer_data = C.CBytes(req.Trailer)
		defer C.free(parms.trailer_data)
		parms.trailer_length = C.uint_t(len(req.Trailer))
	}
	parms.file_descriptor = C.int(req.Src)
	parms.file_offset = C.uint64_t(offset)
	parms.file_bytes = C.int64_t(req.Count)

	var out Outcome
	blocking("send_file", func() {
		out = sendFileLoop(func() (int, int64, syscall.Errno) {
			var cerr C.int
			rc := C.zc_send_file(C.int(req.Dst), &parms, &cerr)
			return int(rc), int64(parms.bytes_sent), syscall.Errno(cerr)
		})
	})
	runtime.KeepAlive(req)
	return out
}
