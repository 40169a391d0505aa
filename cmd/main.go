package main

import (
	"github.com/registration-agent/cmd/agent"
)

func main() {
	agent.Execute()
}
