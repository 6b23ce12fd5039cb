//go:build !race

package mealdiary

func passwordHashCost() int {
	return BcryptCost
}
