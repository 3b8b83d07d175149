//go:build linux
// +build linux

package logger

import "golang.org/x/sys/unix"

const ioctlGetTermios = unix.TCGETS
