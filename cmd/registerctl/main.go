package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/MSSkowron/userregistry/pkg/client"
	"golang.org/x/term"
)

func main() {
	serverAddress := flag.String("addr", "localhost:5001", "address of the registry gRPC API")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Parse()

	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("Enter username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		log.Fatalf("Failed to read username from console: %s", err)
	}
	username = strings.Trim(username, "\r\n")

	password, err := readPassword(reader)
	if err != nil {
		log.Fatalf("Failed to read password from console: %s", err)
	}

	c, err := client.NewClient(*serverAddress)
	if err != nil {
		log.Fatalf("Failed to create client: %s", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	user, err := c.Register(ctx, username, password, "")
	if err != nil {
		switch {
		case errors.Is(err, client.ErrUserAlreadyExists):
			log.Fatalf("User name %q is already taken", username)
		case errors.Is(err, client.ErrInvalidInput):
			log.Fatalf("Invalid input: %s", err)
		default:
			log.Fatalf("Failed to register: %s", err)
		}
	}

	fmt.Printf("Registered user [ID: %d] [User name: %s] [Role: %s] [Created at: %s]\n",
		user.ID, user.Username, user.Role, user.CreatedAt.Format(time.RFC3339))
}

// readPassword reads a password without echo when stdin is a terminal and falls back
// to a plain line read otherwise, so input can be piped.
func readPassword(reader *bufio.Reader) (string, error) {
	fmt.Printf("Enter password: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		password, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return string(password), nil
	}

	password, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.Trim(password, "\r\n"), nil
}
