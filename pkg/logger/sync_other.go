//go:build !unix

package logger

func isUnsyncable(error) bool { return false }
