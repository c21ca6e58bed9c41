package main

import "github.com/Gizmotronn/where-will-i-meet-you/cmd"

func main() {
	cmd.Run()
}
