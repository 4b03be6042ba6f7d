package main

import "github.com/oshokin/model-updater/cmd/model-updater/cmd"

func main() {
	cmd.Execute()
}
