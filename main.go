package main

import "techsupport-agent/cmd"

func main() {
	cmd.Execute()
}
