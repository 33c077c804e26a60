package main

import "staffpay/internal/app/server"

func main() {
	server.Run()
}
