//go:build unix

package logger

import (
	"errors"

	"golang.org/x/sys/unix"
)

func isUnsyncable(err error) bool {
	return errors.Is(err, unix.EINVAL) || errors.Is(err, unix.ENOTTY) || errors.Is(err, unix.EBADF)
}
