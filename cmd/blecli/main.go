package main

import "github.com/robotalks/bleserial/pkg/cli/sh"

func main() {
	sh.Main()
}
