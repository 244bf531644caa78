package main

import "github.com/cockroachdb/dataexpect/cmd"

func main() {
	cmd.Execute()
}
