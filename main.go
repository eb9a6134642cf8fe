package main

import "tinydns-logstat/cmd"

func main() {
	cmd.Execute()
}
