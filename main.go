package main

import "github.com/tanahlink/tanahd/cmd/tanahd"

func main() {
	tanahd.Execute()
}
