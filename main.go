package main

import "github.com/selimozcann/URLTester/cmd"

func main() {
	cmd.Execute()
}
