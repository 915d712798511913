package main

import "github.com/iris-assistant/iris/cmd"

func main() {
	cmd.Execute()
}
