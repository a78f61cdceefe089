package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

// interactive reports whether r is a terminal. The prompt is only printed
// for terminals so piped scripts produce clean output.
func interactive(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && isTerminal(int(f.Fd()))
}

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	Library(ctx context.Context) error
	Upload(ctx context.Context, files []string) error
	Watch(ctx context.Context, id string) error
	Show(ctx context.Context, id string) error
	Generate(ctx context.Context, id, out, prompt string) error
	URL(ctx context.Context, path string) error
}

const helpText = `Available commands:
  library                          list your characters
  upload <file> [file...]          upload reference images and start a character
  watch <id>                       follow a character until it is ready or failed
  show <id>                        print a character
  generate <id> <out.png> <prompt> render the character in a scene
  url <path>                       print a download URL for a stored image
  exit                             leave the program`

// runREPL reads a line from the scanner, parses the first token as the
// command and dispatches to methods on a. The loop exits on scanner EOF or
// when the user types "exit" or "quit".
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, scanner *bufio.Scanner, prompt bool) {
	for {
		if prompt {
			fmt.Print("charstudio> ")
		}
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			printlnFn(helpText)

		case "l", "library":
			err = a.Library(ctx)

		case "upload":
			if len(args) == 0 {
				printlnFn("Usage: upload <file> [file...]")
				continue
			}
			err = a.Upload(ctx, args)

		case "watch", "show", "url":
			if len(args) != 1 {
				printlnFn(fmt.Sprintf("Usage: %s <%s>", cmd, argName(cmd)))
				continue
			}
			switch cmd {
			case "watch":
				err = a.Watch(ctx, args[0])
			case "show":
				err = a.Show(ctx, args[0])
			default:
				err = a.URL(ctx, args[0])
			}

		case "generate":
			if len(args) < 3 {
				printlnFn("Usage: generate <id> <out.png> <prompt...>")
				continue
			}
			err = a.Generate(ctx, args[0], args[1], strings.Join(args[2:], " "))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn("Error:", err)
		}
	}
}

func argName(cmd string) string {
	if cmd == "url" {
		return "path"
	}
	return "id"
}
