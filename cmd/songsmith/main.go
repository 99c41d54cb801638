package main

import (
	"songsmith/cmd/handlers"
	"songsmith/internal/logger"
)

func main() {
	logger.Init()
	handlers.Execute()
}
