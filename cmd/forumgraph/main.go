package main

import "forumgraph/cmd/forumgraph/commands"

func main() {
	commands.Execute()
}
