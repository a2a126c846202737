package main

import "github.com/cijsubs/cijsubs/cmd/cijsubs/cmd"

func main() {
	cmd.Execute()
}
