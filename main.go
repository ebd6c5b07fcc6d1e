package main

import "github.com/rpull/rpull/cmd"

func main() {
	cmd.Execute()
}
