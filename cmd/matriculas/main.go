package main

import (
	"context"
	"ufsc-matriculas/cmd/matriculas/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
