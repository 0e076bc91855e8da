package main

import "spicecad/cmd/spicecad/cmd"

func main() {
	cmd.Execute()
}
