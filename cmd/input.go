package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fioncat/otree/pkg/loader"
)

var (
	// errShowHelp is returned by readInput when there is neither a file nor
	// piped stdin.
	errShowHelp = errors.New("no input provided")
)

// input is the raw document with its resolved format.
type input struct {
	Data   []byte
	Path   string
	Format loader.Format
}

// readInput reads the file named by args, or stdin when args is empty or
// "-". The format follows --type, then the extension, then detection.
func readInput(args []string, stdin io.Reader) (input, error) {
	var explicit *loader.Format
	if inputType != "" {
		f, err := loader.ParseFormat(inputType)
		if err != nil {
			return input{}, err
		}
		explicit = &f
	}

	if len(args) == 1 && args[0] != "-" {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return input{}, fmt.Errorf("read %s: %w", path, err)
		}
		return input{Data: data, Path: path, Format: loader.ResolveFormat(path, data, explicit)}, nil
	}

	if len(args) == 0 && !stdinIsPiped() {
		return input{}, errShowHelp
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return input{}, fmt.Errorf("read stdin: %w", err)
	}
	return input{Data: data, Format: loader.ResolveFormat("", data, explicit)}, nil
}
