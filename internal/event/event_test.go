package event

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	tests := []struct {
		want string
		typ  Type
	}{
		{want: "TransferStarted", typ: TransferStarted},
		{want: "TransferProgress", typ: TransferProgress},
		{want: "TransferRetry", typ: TransferRetry},
		{want: "TransferCompleted", typ: TransferCompleted},
		{want: "TransferFailed", typ: TransferFailed},
		{want: "VerifyStarted", typ: VerifyStarted},
		{want: "VerifyOK", typ: VerifyOK},
		{want: "VerifyFailed", typ: VerifyFailed},
		{want: "ConnAccepted", typ: ConnAccepted},
		{want: "ConnClosed", typ: ConnClosed},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.typ.String())
		})
	}
}

func TestTypeStringUnknown(t *testing.T) {
	assert.Equal(t, "Unknown", Type(999).String())
	assert.Equal(t, "Unknown", Type(0).String())
	assert.Equal(t, "Unknown", Type(-3).String())
}

func TestNew(t *testing.T) {
	before := time.Now()
	ev := New(TransferCompleted, "a.bin")
	assert.Equal(t, TransferCompleted, ev.Type)
	assert.Equal(t, "a.bin", ev.Path)
	assert.False(t, ev.Timestamp.Before(before))
}
