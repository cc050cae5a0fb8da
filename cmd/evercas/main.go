package main

import "github.com/weedonandscott/evercas/cmd/evercas/cmd"

func main() {
	cmd.Execute()
}
