package agent

import (
	"context"
	"fmt"

	"github.com/finvik/coinbooks"
	"github.com/finvik/coinbooks/docs"
	"github.com/finvik/coinbooks/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// creates the facilitator
func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They are at your service and 100% dedicated to you, they keep context of your previous questions.

			The user is a back-office operator of a crypto-asset trading firm. He is here primarily
			to get figures out of the firm's books: balances, open lots, realized gains, journal
			integrity, wallet reconciliation.

			Devise a plan of questions to ask each expert and come up with the best response to
			the user's request. Answer with the figures, not with the plan.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewBookkeeper creates the expert in charge of reading the firm's books
// stored in the given directory.
func NewBookkeeper(booksDir string) *Expert {
	lib := []Function{
		balanceTool(booksDir),
		lotsTool(booksDir),
		gainsTool(booksDir),
		verifyTool(booksDir),
	}

	return &Expert{
		Name: "Bookkeeper",
		Description: `This is the Bookkeeper. He is in charge of reading the firm's books:
		the journal, the lot inventory and the reconciliation history.
		He can report account balances, open lots, realized gains, and whether the
		journal's hash chain is intact.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a bookkeeper in charge of the firm's crypto-asset books.
				You know how to use the Tools to extract relevant figures from the books.
				You are part of a team of experts; they might ask you questions with
				approximative wording, figure out which account, asset or period they meant.

				Use the available tools to report
				  - account balances as of a date
				  - open acquisition lots and their cost basis
				  - realized gains over a period
				  - journal integrity
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

// errorResponse wraps an error into a function response.
func errorResponse(id, name string, err error) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"error": err.Error()}}
}

func outputResponse(id, name, output string) *genai.FunctionResponse {
	return &genai.FunctionResponse{ID: id, Name: name, Response: map[string]any{"output": output}}
}

// dateSchema is the shared schema of the flexible date argument.
func dateSchema(what string) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeString,
		Description: what + ` Today is the default.
		Otherwise it uses a flexible date format based on YYYY-MM-DD:

		` + must(docs.GetTopic("dates")),
	}
}

func parseDate(args map[string]any, key string) (coinbooks.Date, error) {
	idate, hasDate := args[key]
	if !hasDate {
		return coinbooks.Today(), nil
	}
	sdate, ok := idate.(string)
	if !ok {
		return coinbooks.Today(), fmt.Errorf("argument %q is not a string as expected but %T", key, idate)
	}
	date, err := coinbooks.ParseDate(sdate)
	if err != nil {
		return coinbooks.Today(), fmt.Errorf("argument %q must be a valid date got %q. Below is the doc about the date format\n\n%s", key, sdate, must(docs.GetTopic("dates")))
	}
	return date, nil
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func balanceTool(booksDir string) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Balance",
			Description: `Balance computes the book balance of an account as of a date,
			by replaying the journal's postings. Optionally restricted to one asset symbol.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"account": {Type: genai.TypeString, Description: "The account code, e.g. assets:wallet:main."},
					"asset":   {Type: genai.TypeString, Description: "Optional asset symbol filter, e.g. BTC."},
					"date":    dateSchema("The date as of which to compute the balance."),
				},
				Required: []string{"account"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted balance report for the account.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			date, err := parseDate(args, "date")
			if err != nil {
				return errorResponse(id, "Balance", err)
			}
			books, err := coinbooks.OpenBooks(booksDir)
			if err != nil {
				return errorResponse(id, "Balance", err)
			}
			b := books.Journal.BalanceAsOf(stringArg(args, "account"), stringArg(args, "asset"), date)
			return outputResponse(id, "Balance", renderer.BalanceMarkdown([]coinbooks.Balance{b}))
		},
	}
}

func lotsTool(booksDir string) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Lots",
			Description: `Lots lists the open acquisition lots of the inventory, with their
			remaining quantities and cost bases. Optionally restricted to one asset symbol.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"asset": {Type: genai.TypeString, Description: "Optional asset symbol filter, e.g. BTC."},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted table of the open lots.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			books, err := coinbooks.OpenBooks(booksDir)
			if err != nil {
				return errorResponse(id, "Lots", err)
			}
			return outputResponse(id, "Lots", renderer.LotsMarkdown(books.Inventory, stringArg(args, "asset"), false))
		},
	}
}

func gainsTool(booksDir string) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Gains",
			Description: `Gains reports the realized profit and loss of all disposals in a
			period, per disposal and per asset.`,
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"from": dateSchema("The first day of the period."),
					"to":   dateSchema("The last day of the period."),
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted realized gains report.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			from, err := parseDate(args, "from")
			if err != nil {
				return errorResponse(id, "Gains", err)
			}
			to, err := parseDate(args, "to")
			if err != nil {
				return errorResponse(id, "Gains", err)
			}
			books, err := coinbooks.OpenBooks(booksDir)
			if err != nil {
				return errorResponse(id, "Gains", err)
			}
			return outputResponse(id, "Gains", renderer.GainsMarkdown(books.Inventory, from, to))
		},
	}
}

func verifyTool(booksDir string) *Func {
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name: "Verify",
			Description: `Verify recomputes the journal's whole hash chain and reports whether
			it is intact, or where it breaks.`,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: map[string]*genai.Schema{},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown-formatted verification report.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			books, err := coinbooks.OpenBooks(booksDir)
			if err != nil {
				return errorResponse(id, "Verify", err)
			}
			return outputResponse(id, "Verify", renderer.VerificationMarkdown(books.Journal.VerifyChain()))
		},
	}
}
