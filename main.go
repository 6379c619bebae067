package main

import "github.com/mediatrail/mediatrail/cmd"

func main() {
	cmd.Execute()
}
