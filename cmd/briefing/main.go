package main

import (
	_ "time/tzdata"

	"github.com/jimdaga/first-sip/internal/cli"
)

func main() {
	cli.Execute()
}
