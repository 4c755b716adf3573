//go:build windows

package doctor

import (
	"fmt"
	"os"
	"os/signal"
)

func resetTerminal() {}

func setupInterruptHandler() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	go func() {
		<-sigChan
		println("\nInterrupted")
		os.Exit(1)
	}()
}

func printPasteHint() {
	fmt.Println("  Synthetic keystrokes may be blocked by focused elevated windows")
}
