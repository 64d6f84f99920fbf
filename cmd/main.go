package main

import (
	cmd "github.com/nwatts/gbdl/cmd/gbdl"
)

func main() {
	cmd.Execute()
}
