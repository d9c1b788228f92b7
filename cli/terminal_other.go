//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package main

import "os"

func terminalWidth(*os.File) (int, bool) {
	return 0, false
}
