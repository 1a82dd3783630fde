package main

import "cedi-api/internal/app"

func main() {
	app.Run()
}
