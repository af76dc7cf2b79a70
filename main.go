package main

import "searchshell/cmd"

func main() {
	cmd.Execute()
}
