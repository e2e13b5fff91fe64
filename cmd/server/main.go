package main

import "talentflow/internal/app/server"

func main() {
	server.Run()
}
