package main

import "github.com/vietddude/toolguard/internal/cli"

func main() {
	cli.Execute()
}
