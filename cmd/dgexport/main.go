package main

import "github.com/notargets/DGExport/cmd"

func main() {
	cmd.Execute()
}
