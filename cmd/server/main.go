package main

import "leadcrm/internal/app"

// @title           Lead CRM API
// @version         1.0
// @description     Lead management with cookie-based sessions.
// @BasePath        /
func main() {
	app.Run()
}
