package main

import (
	"context"

	"github.com/timeflowhq/timeflow/internal/cli"
)

func main() {
	ctx := context.Background()
	cli.Main(ctx)
}
