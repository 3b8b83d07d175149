//go:build darwin
// +build darwin

package logger

import "golang.org/x/sys/unix"

const ioctlGetTermios = unix.TIOCGETA
