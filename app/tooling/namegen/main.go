package main

import "github.com/ardanlabs/namegen/app/tooling/namegen/cmd"

func main() {
	cmd.Execute()
}
