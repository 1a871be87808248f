package main

import "github.com/vietddude/netswitch/internal/cli"

func main() {
	cli.Execute()
}
