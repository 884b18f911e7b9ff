package main

import "github.com/heartscript/storefront/app/cmd"

func main() {
	cmd.RunCli()
}
