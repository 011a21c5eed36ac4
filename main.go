package main

import "clickhelper/cmd"

func main() {
	cmd.Execute()
}
