package main

import "soilsim/cmd"

func main() {
	cmd.Execute()
}
