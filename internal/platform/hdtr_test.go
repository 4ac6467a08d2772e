package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlanVectorsEmpty(t *testing.T) {
	p, vectored := planVectors(nil, []byte{})
	assert.False(t, vectored)
	assert.Equal(t, vectorPlan{}, p)
}

func TestPlanVectorsCounts(t *testing.T) {
	p, vectored := planVectors([]byte("HEAD"), nil)
	assert.True(t, vectored)
	assert.Equal(t, int32(1), p.hdrCnt)
	assert.Equal(t, int32(0), p.trlCnt)

	p, vectored = planVectors(nil, []byte("TAIL"))
	assert.True(t, vectored)
	assert.Equal(t, int32(0), p.hdrCnt)
	assert.Equal(t, int32(1), p.trlCnt)

	p, vectored = planVectors([]byte("H"), []byte("T"))
	assert.True(t, vectored)
	assert.Equal(t, int32(1), p.hdrCnt)
	assert.Equal(t, int32(1), p.trlCnt)
}

func TestDarwinSeed(t *testing.T) {
	p, vectored := planVectors([]byte("HEADER"), []byte("TR"))
	// Header bytes are folded into the in/out counter; trailer bytes are not.
	assert.Equal(t, int64(106), darwinSeed(100, p, vectored))

	p, vectored = planVectors(nil, nil)
	assert.Equal(t, int64(100), darwinSeed(100, p, vectored))

	// Count 0 ("to EOF") stays 0 without a header.
	assert.Equal(t, int64(0), darwinSeed(0, p, vectored))
}
