package main

import "github.com/iksnae/chat-courier/cmd"

func main() {
	cmd.Execute()
}
