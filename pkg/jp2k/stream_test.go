package jp2k

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_ChunkedReads(t *testing.T) {
	for _, chunk := range []int{1, 3, 7, 10, 64} {
		c := &cursor{buf: []byte("0123456789")}
		var got []byte
		p := make([]byte, chunk)
		for n := c.read(p); n > 0; n = c.read(p) {
			got = append(got, p[:n]...)
		}
		assert.Equal(t, "0123456789", string(got), "chunk %d", chunk)
		for i := 0; i < 3; i++ {
			assert.Zero(t, c.read(p))
		}
	}
}

func TestCursor_EmptyDestination(t *testing.T) {
	c := &cursor{buf: []byte("abc")}
	assert.Zero(t, c.read(nil))
	assert.Zero(t, c.read([]byte{}))
	assert.Zero(t, c.off)
}

func TestCursor_Release(t *testing.T) {
	c := &cursor{buf: []byte("abc")}
	c.release()
	assert.True(t, c.released)
	assert.Zero(t, c.read(make([]byte, 4)))
	c.release() // logged, otherwise ignored
	assert.True(t, c.released)
}

func TestOpenMemory(t *testing.T) {
	fe := newFakeEngine(rgbHeader())
	s, err := OpenMemory(fe, source)
	require.NoError(t, err)
	require.NotNil(t, s.Handle())

	s.Close()
	s.Close()
	assert.Nil(t, s.Handle())
	assert.Equal(t, 1, fe.destroys["stream"])
	assert.Equal(t, 1, fe.released)
}

func TestOpenFile(t *testing.T) {
	fe := newFakeEngine(rgbHeader())
	_, err := OpenFile(fe, "a\x00b")
	require.ErrorIs(t, err, ErrPathEncoding)

	fe.failAt = "create_stream"
	_, err = OpenFile(fe, "missing.jp2")
	require.ErrorIs(t, err, ErrStreamCreate)
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "memory(3 bytes)", Bytes([]byte("abc")).String())
	assert.Equal(t, "a.jp2", File("a.jp2").String())
}
