package main

import "github.com/tonimelisma/vidispine-client/cmd"

func main() {
	cmd.Execute()
}
