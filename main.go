package main

import "github.com/zinc-sig/ftlaunch/cmd"

func main() {
	cmd.Execute()
}
