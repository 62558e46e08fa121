//go:build !linux

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(
		os.Stderr,
		"safecrab is only supported on Linux.\n\nIf you are seeing this message, you are attempting to build or run safecrab on an unsupported platform.\n\nsafecrab reads ss, ip, ufw and /proc, which only exist on Linux hosts.",
	)
	os.Exit(1)
}
