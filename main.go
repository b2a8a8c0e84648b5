package main

import "github.com/frahmantamala/checkout-gateway/cmd"

func main() {
	cmd.Execute()
}
