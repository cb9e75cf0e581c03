package main

import "github.com/medibook/medibook_backend/cmd"

func main() {
	cmd.Execute()
}
