package main

import "github.com/codingevents/server/cmd/server/cmd"

func main() {
	cmd.Execute()
}
