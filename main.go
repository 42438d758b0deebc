package main

import (
	"campus-club-system/cmd/server"
)

func main() {
	server.Init()
	server.Run()
}
