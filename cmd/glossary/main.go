// Package main implements the glossary command, an interactive store of
// keywords and their definitions with search, editing and quizzes.
package main

import (
	"context"
	"os"
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], streams{
		in:  os.Stdin,
		out: os.Stdout,
		err: os.Stderr,
	}))
}
