package main

import "github.com/notargets/stlview/cmd"

func main() {
	cmd.Execute()
}
