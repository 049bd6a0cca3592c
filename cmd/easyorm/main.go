package main

import (
	"context"
	"fmt"
	"os"

	"github.com/TechXTT/easyorm/pkg/cli"
)

func main() {
	if err := cli.NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "easyorm:", err)
		os.Exit(1)
	}
}
