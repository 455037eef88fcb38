package main

import "github.com/workstack/org-messaging/cmd"

func main() {
	cmd.Execute()
}
