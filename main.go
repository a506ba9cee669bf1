package main

import "github.com/sitelabel/annotator/cmd"

func main() {
	cmd.Execute()
}
