package main

import "github.com/msiedlarek/fluxfat/cmd"

func main() {
	cmd.Execute()
}
