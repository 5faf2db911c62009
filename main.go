package main

import (
	"github.com/modaltela/modal-tela-api/app/cmd"
)

func main() {
	cmd.RunCli()
}
