package main

import (
	"context"
	"fmt"
	"os"

	"github.com/PratikDhanave/delivery-time-analytics/internal/commands"
)

func main() {
	if err := commands.Execute(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "movingavg: %v\n", err)
		os.Exit(1)
	}
}
