package main

import "github.com/policysync/mongofetch/cmd"

func main() {
	cmd.Execute()
}
