package main

import (
	"fmt"
	"os"

	"github.com/avelis/trackwire/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Printf("program execute failed: %v\n", err)
		os.Exit(1)
	}
}
