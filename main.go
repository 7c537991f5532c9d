package main

import "github.com/devwork/gh-activity/cmd"

func main() {
	cmd.Execute()
}
