package main

import (
	_ "time/tzdata"

	"price-sync/cmd"
)

func main() {
	cmd.Execute()
}
