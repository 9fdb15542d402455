package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// prompter asks the operator for run settings. EOF accepts the default.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) readLine(question string) (string, bool) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (p *prompter) positiveInt(question string, def int) int {
	for {
		line, ok := p.readLine(fmt.Sprintf("%s [default: %d]: ", question, def))
		if !ok || line == "" {
			return def
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			fmt.Fprintln(p.out, "Please enter a valid number.")
			continue
		}
		if n <= 0 {
			fmt.Fprintln(p.out, "Please enter a positive number.")
			continue
		}
		return n
	}
}

func (p *prompter) yesNo(question string, def bool) bool {
	hint := "y"
	if !def {
		hint = "n"
	}
	for {
		line, ok := p.readLine(fmt.Sprintf("%s (y/n) [default: %s]: ", question, hint))
		if !ok || line == "" {
			return def
		}
		switch strings.ToLower(line) {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		fmt.Fprintln(p.out, "Please enter 'y' for yes or 'n' for no.")
	}
}
