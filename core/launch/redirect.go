package launch

import (
	"fmt"
	"os"
)

// redirection holds the file targets parsed out of an argument vector.
type redirection struct {
	in        string
	out       string
	appendOut bool
}

// splitRedirects removes `< file`, `> file` and `>> file` pairs from argv
// and returns the remaining words. A dangling operator is a syntax error
// that aborts just this command.
func splitRedirects(argv []string) ([]string, redirection, error) {
	var clean []string
	var r redirection

	for i := 0; i < len(argv); i++ {
		switch argv[i] {
		case "<":
			if i+1 >= len(argv) {
				return nil, r, fmt.Errorf("syntax error: missing filename after %q", argv[i])
			}
			r.in = argv[i+1]
			i++
		case ">", ">>":
			if i+1 >= len(argv) {
				return nil, r, fmt.Errorf("syntax error: missing filename after %q", argv[i])
			}
			r.out = argv[i+1]
			r.appendOut = argv[i] == ">>"
			i++
		default:
			clean = append(clean, argv[i])
		}
	}
	return clean, r, nil
}

func (r redirection) openIn() (*os.File, error) {
	return os.Open(r.in)
}

func (r redirection) openOut() (*os.File, error) {
	flags := os.O_WRONLY | os.O_CREATE
	if r.appendOut {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	return os.OpenFile(r.out, flags, 0666)
}
