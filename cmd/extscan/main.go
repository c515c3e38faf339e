package main

import "github.com/dbsmedya/extscan/cmd/extscan/cmd"

func main() {
	cmd.Execute()
}
