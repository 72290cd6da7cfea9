package main

import (
	"github.com/domectrl/pidreg/cmd"
)

func main() {
	cmd.Execute()
}
