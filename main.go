package main

import "github.com/deploymenttheory/go-sav/cmd"

func main() {
	cmd.Execute()
}
