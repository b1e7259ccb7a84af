package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

func main() {
	bin, err := exec.LookPath("sprintloom")
	if err != nil {
		fmt.Fprintln(os.Stderr, "spl: sprintloom not found on PATH")
		os.Exit(1)
	}
	if err := syscall.Exec(bin, append([]string{"sprintloom"}, os.Args[1:]...), os.Environ()); err != nil {
		fmt.Fprintf(os.Stderr, "spl: %v\n", err)
		os.Exit(1)
	}
}
