package main

import "StockLens/internal/cli"

func main() {
	cli.Execute()
}
