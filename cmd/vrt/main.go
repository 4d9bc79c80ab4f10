package main

import "github.com/dgallion1/vertical/internal/cli"

func main() {
	cli.Execute()
}
