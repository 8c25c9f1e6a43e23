//go:build linux
// +build linux

package logger

import (
	"os"

	"golang.org/x/sys/unix"
)

const SupportsColorEscapes = true

func GetTerminalInfo(file *os.File) (info TerminalInfo) {
	fd := file.Fd()

	if _, err := unix.IoctlGetTermios(int(fd), unix.TCGETS); err == nil {
		info.IsTTY = true
		info.UseColorEscapes = !hasNoColorEnvironmentVariable()
	}

	if winsize, err := unix.IoctlGetWinsize(int(fd), unix.TIOCGWINSZ); err == nil {
		info.Width = int(winsize.Col)
		info.Height = int(winsize.Row)
	}

	return
}

func writeStringWithColor(file *os.File, text string) {
	file.WriteString(text)
}
