package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/etnz/allocation"
	"github.com/etnz/allocation/docs"
	"github.com/etnz/allocation/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

// Loader returns a fresh snapshot of the user's portfolio.
type Loader func() (*allocation.Portfolio, error)

func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and of solving the user's request.

			Learn about the experts' skills from the Tools and ask them questions.
			They are 100% dedicated to you and keep the context of your previous questions.

			The user wants to keep a portfolio close to its target allocation. Expect questions about
			which holdings drift from their targets, what to buy or sell to rebalance, and news about
			the assets held.

			The user assumes that you know the portfolio tickers: ask the Analyst first.
			Devise a plan of questions to the experts, then answer in markdown.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewTrader returns an expert of financial markets, grounded with Google Search.
func NewTrader() *Expert {
	return &Expert{
		Name: "Trader",
		Description: `This is an expert trader, aware of financial products, markets and the latest
		news about funds and companies. Ask the Trader whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in trading. Search anything related to financial institutions,
			companies, markets and funds, and leverage Google Search to ground your assertions.
			Relate the latest news to the user's request.
			`}}},
		},
	}
}

// NewAnalyst returns the expert reading the user's portfolio through load.
func NewAnalyst(load Loader) *Expert {
	lib := []Function{ReportTool(load), RowsTool(load), DocumentationTool()}
	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst, in charge of the user's portfolio. It knows the holdings, their
		value, their actual and target weights, and their deviation from the target allocation.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are the analyst of the user's portfolio. Use the Tools to read the portfolio report,
			the figures of a given ticker and the documentation of how figures are computed.
			Other experts might use approximate language, figure out what they meant.
			Weights and deviations are in percent of the whole portfolio. A "-" means the figure is unknown,
			usually because a price or an FX rate is missing.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// ReportTool returns the markdown report of the portfolio.
func ReportTool(load Loader) *Func {
	const name = "portfolio_report"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Returns the full portfolio report: totals, every holding with its value, weights and deviation, and the FX rates.",
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A markdown report.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			p, err := load()
			if err != nil {
				return errorResponse(id, name, fmt.Errorf("could not load the portfolio: %w", err))
			}
			return outputResponse(id, name, renderer.RenderReport(renderer.NewReport(p.Compute(), p.FX(), p.Stats())))
		},
	}
}

// RowsTool returns the computed figures of the holdings of a ticker, as JSON.
func RowsTool(load Loader) *Func {
	const name = "holding_figures"
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Returns every computed figure of the holdings of a ticker, in JSON. Amounts are in the base currency.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"ticker": {
						Type:        genai.TypeString,
						Description: "The ticker, as written in the portfolio report.",
					},
				},
				Required: []string{"ticker"},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "A JSON array of holdings.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			ticker, err := stringArg(args, "ticker", true)
			if err != nil {
				return errorResponse(id, name, err)
			}
			p, err := load()
			if err != nil {
				return errorResponse(id, name, fmt.Errorf("could not load the portfolio: %w", err))
			}
			var rows []allocation.Row
			for _, row := range p.Compute().Rows {
				if strings.EqualFold(row.Holding.Ticker, ticker) {
					rows = append(rows, row)
				}
			}
			if len(rows) == 0 {
				return errorResponse(id, name, fmt.Errorf("no holding for ticker %q", ticker))
			}
			data, err := json.Marshal(rows)
			if err != nil {
				return errorResponse(id, name, err)
			}
			return outputResponse(id, name, string(data))
		},
	}
}

// DocumentationTool returns a documentation topic.
func DocumentationTool() *Func {
	const name = "documentation"
	topics, _ := docs.Topics()
	return &Func{
		Decl: &genai.FunctionDeclaration{
			Name:        name,
			Description: "Returns the user documentation about a topic.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"topic": {
						Type:        genai.TypeString,
						Description: "One of " + strings.Join(topics, ", ") + ". All topics when empty.",
					},
				},
			},
			Response: &genai.Schema{
				Type:        genai.TypeString,
				Description: "The topic in markdown.",
			},
		},
		Func: func(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
			topic, err := stringArg(args, "topic", false)
			if err != nil {
				return errorResponse(id, name, err)
			}
			if topic == "" {
				topic = docs.All
			}
			content, err := docs.GetTopic(topic)
			if err != nil {
				return errorResponse(id, name, err)
			}
			return outputResponse(id, name, content)
		},
	}
}
