package main

import (
	"context"
	"os"

	"github.com/cpso-tools/cpso/internal/cmd/root"
)

func main() {
	os.Exit(root.Execute(context.Background(), root.New()))
}
