package main

import "github.com/Asterixfoods/asterix-charts/cmd"

func main() {
	cmd.Execute()
}
