//go:build windows
// +build windows

package logger

import (
	"os"

	"golang.org/x/sys/windows"
)

const SupportsColorEscapes = true

func GetTerminalInfo(file *os.File) (info TerminalInfo) {
	fd := windows.Handle(file.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(fd, &mode); err != nil {
		return
	}
	info.IsTTY = true

	// Enable virtual terminal processing so ANSI escapes work. Modern Windows
	// consoles support this; if it fails we fall back to plain text.
	if err := windows.SetConsoleMode(fd, mode|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING); err == nil {
		info.UseColorEscapes = os.Getenv("NO_COLOR") == ""
	}

	var bufferInfo windows.ConsoleScreenBufferInfo
	if err := windows.GetConsoleScreenBufferInfo(fd, &bufferInfo); err == nil {
		info.Width = int(bufferInfo.Window.Right - bufferInfo.Window.Left)
	}

	return
}

func writeStringWithColor(file *os.File, text string) {
	file.WriteString(text)
}
