package console

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/juxbox-org/webtraversallibrary/internal/ports"
)

// Prompter blocks on stdin until the user presses Enter.
type Prompter struct{}

func NewPrompter() *Prompter {
	return &Prompter{}
}

var _ ports.Prompter = (*Prompter)(nil)

func (p *Prompter) Confirm(ctx context.Context, prompt string) error {
	fmt.Println(prompt)

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(os.Stdin).ReadString('\n')
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
