package fs

import (
	"errors"
	"os"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrnoCapturesNativeCode(t *testing.T) {
	// Raw errno.
	err := FromErrno(syscall.ENOENT)
	assert.True(t, errors.Is(err, ErrNotExist))

	// Wrapped by os.
	_, statErr := os.Stat("/this/path/does/not/exist")
	require.Error(t, statErr)
	err = FromErrno(statErr)
	assert.True(t, errors.Is(err, ErrNotExist))

	code, ok := AsErrno(err)
	require.True(t, ok)
	assert.Equal(t, syscall.ENOENT, code)
}

func TestFromErrnoPreservesUncommonCodes(t *testing.T) {
	// Codes without a named constant still pass through unmodified.
	err := FromErrno(syscall.EMLINK)
	code, ok := AsErrno(err)
	require.True(t, ok)
	assert.Equal(t, syscall.EMLINK, code)
}

func TestFromErrnoDefaultsToEIO(t *testing.T) {
	err := FromErrno(errors.New("opaque failure"))
	assert.True(t, errors.Is(err, ErrIO))
}

func TestFromErrnoNil(t *testing.T) {
	assert.NoError(t, FromErrno(nil))
}

func TestFSErrorWrapping(t *testing.T) {
	err := NewError("GetAttr", "/some/file", ErrNotExist)

	assert.Equal(t, "GetAttr /some/file: no such file or directory", err.Error())
	assert.True(t, errors.Is(err, ErrNotExist))

	code, ok := AsErrno(err)
	require.True(t, ok)
	assert.Equal(t, syscall.ENOENT, code)

	err = NewError("StatFS", "", ErrIO)
	assert.Equal(t, "StatFS: input/output error", err.Error())
}
