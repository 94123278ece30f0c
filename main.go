package main

import "github.com/kube-rca/aiops-processor/cmd"

func main() {
	cmd.Execute()
}
