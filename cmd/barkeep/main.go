// Command barkeep generates cocktail recipes, ingests a liquor inventory and costs the
// recipe against it.
package main

func main() {
	Execute()
}
