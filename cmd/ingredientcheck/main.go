package main

import "github.com/taj0207/IngredientCheck/internal/cli"

func main() {
	cli.Execute()
}
