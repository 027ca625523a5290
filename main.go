package main

import "github.com/tanq16/speedtest/cmd"

func main() {
	cmd.Execute()
}
