package main

import "sparebin-orderbot/cmd/orderbot/cmd"

func main() {
	cmd.Execute()
}
