package agent

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"
)

// Agent runs the interactive assist session: a facilitator chat the user
// talks to, backed by experts the facilitator consults as tools.
type Agent struct {
	w           io.Writer
	r           *bufio.Reader
	Facilitator *Expert
	Experts     []*Expert
}

// New creates an agent over the given experts, reading user input from r
// and writing the conversation to w.
func New(w io.Writer, r io.Reader, experts ...*Expert) *Agent {
	return &Agent{
		w:           w,
		r:           bufio.NewReader(r),
		Experts:     experts,
		Facilitator: newFacilitator(experts...),
	}
}

// Start creates the chat sessions for the facilitator and every expert.
func (a *Agent) Start(ctx context.Context, client *genai.Client) error {
	for _, e := range a.Experts {
		if err := e.Start(ctx, client); err != nil {
			return err
		}
	}
	return a.Facilitator.Start(ctx, client)
}

const prompt = "assist> "

// next returns the next user input: queued prompts first, then stdin.
// io.EOF means the session is over.
func (a *Agent) next(prompts []string) (string, []string, error) {
	if len(prompts) > 0 {
		input := strings.TrimSpace(prompts[0])
		fmt.Fprintln(a.w, input)
		return input, prompts[1:], nil
	}
	input, err := a.r.ReadString('\n')
	return strings.TrimSpace(input), nil, err
}

// Run starts the REPL. Prompts given as arguments are consumed before
// reading from the user; "bye" or Ctrl+D ends the session.
func (a *Agent) Run(ctx context.Context, client *genai.Client, prompts ...string) error {
	if a.Facilitator.chat == nil {
		if err := a.Start(ctx, client); err != nil {
			return err
		}
	}

	fmt.Fprintln(a.w, "Welcome to cbk back-office assist. Type 'bye' to exit.")

	for {
		fmt.Fprint(a.w, prompt)
		input, rest, err := a.next(prompts)
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		prompts = rest
		if input == "" {
			continue
		}
		if input == "bye" {
			return nil
		}

		content, err := a.Facilitator.Ask(ctx, &genai.Part{Text: input})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.w, content.Parts[0].Text)
	}
}
