package main

import "github.com/dszqbsm/xiagu-crawler/cmd"

func main() {
	cmd.Execute()
}
