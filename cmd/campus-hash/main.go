// Command campus-hash generates password hashes in the format the portal's
// record tables store, for seeding teacher and admin rows by hand.
//
// Usage:
//
//	campus-hash                      # prompt twice, print the hash
//	campus-hash -iterations 600000   # explicit work factor
//	campus-hash -check '<hash>'      # prompt once, verify against a hash
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/stellarmin/campusauth/password"
)

func main() {
	var (
		iterations = flag.Int("iterations", password.DefaultIterations, "PBKDF2 iteration count")
		saltLength = flag.Int("salt-length", password.DefaultSaltLength, "salt length in characters")
		check      = flag.String("check", "", "verify the prompted password against this stored hash")
	)
	flag.Parse()

	hasher, err := password.NewPBKDF2(password.Config{
		Iterations: *iterations,
		SaltLength: *saltLength,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "campus-hash:", err)
		os.Exit(2)
	}

	if *check != "" {
		plain, err := readPassword("Password: ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "campus-hash:", err)
			os.Exit(1)
		}

		ok, err := hasher.Verify(*check, plain)
		if err != nil {
			fmt.Fprintln(os.Stderr, "campus-hash:", err)
			os.Exit(1)
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "no match")
			os.Exit(1)
		}
		fmt.Println("match")
		return
	}

	plain, err := readPassword("Password: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "campus-hash:", err)
		os.Exit(1)
	}
	confirm, err := readPassword("Confirm: ")
	if err != nil {
		fmt.Fprintln(os.Stderr, "campus-hash:", err)
		os.Exit(1)
	}
	if plain != confirm {
		fmt.Fprintln(os.Stderr, "campus-hash: passwords do not match")
		os.Exit(1)
	}

	hash, err := hasher.Hash(plain)
	if err != nil {
		fmt.Fprintln(os.Stderr, "campus-hash:", err)
		os.Exit(1)
	}

	fmt.Println(hash)
}

// readPassword prompts on stderr so the hash alone lands on stdout, which
// keeps `campus-hash > hash.txt` usable. Falls back to a plain line read
// when stdin is not a terminal (pipes, CI).
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
