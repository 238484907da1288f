package main

import "github.com/stupiduntilnot/telegram-getter/internal/cli"

func main() {
	cli.Execute()
}
