package main

import "github.com/lepinkainen/hpdata/cmd"

var execute = cmd.Execute

func main() {
	execute()
}
