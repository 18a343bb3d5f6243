package main

import "github.com/chrisdamba/retailiq/cmd"

func main() {
	cmd.Execute()
}
