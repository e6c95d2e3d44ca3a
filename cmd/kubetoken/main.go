package main

import (
	"github.com/criteo/kubetoken/internal/client/commands"
	"github.com/criteo/kubetoken/internal/client/errors"
)

func main() {
	if err := commands.Execute(); err != nil {
		errors.ExitWithError(err)
	}
}
