package main

import (
	"fmt"
	"os"

	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/supervisor"
)

func main() {
	root := buildRoot()
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(supervisor.ExitCode(err))
	}
}
