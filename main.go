package main

import "github.com/KaramelBytes/churnscope/cmd"

func main() {
	cmd.Execute()
}
