package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/optimatax/reliefdesk/pkg/domain/model"
	"github.com/optimatax/reliefdesk/pkg/domain/types"
	"github.com/optimatax/reliefdesk/pkg/usecase"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"
)

func cmdAssess() *cli.Command {
	var debt, income, expenses string
	var returnsFiled bool

	return &cli.Command{
		Name:  "assess",
		Usage: "Run the anonymous relief pre-screen in the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "debt",
				Usage:       "Total tax debt",
				Required:    true,
				Destination: &debt,
			},
			&cli.StringFlag{
				Name:        "income",
				Usage:       "Monthly income",
				Required:    true,
				Destination: &income,
			},
			&cli.StringFlag{
				Name:        "expenses",
				Usage:       "Monthly expenses",
				Required:    true,
				Destination: &expenses,
			},
			&cli.BoolFlag{
				Name:        "returns-filed",
				Usage:       "All required tax returns have been filed",
				Value:       true,
				Destination: &returnsFiled,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			in, err := parseQuickCheckInput(debt, income, expenses, returnsFiled)
			if err != nil {
				return err
			}

			result, err := usecase.NewEligibilityUseCase().QuickCheck(*in)
			if err != nil {
				return err
			}

			printQuickCheck(c.Root().Writer, result)
			return nil
		},
	}
}

func parseQuickCheckInput(debt, income, expenses string, returnsFiled bool) (*model.QuickCheckInput, error) {
	amounts := map[string]string{
		"debt":     debt,
		"income":   income,
		"expenses": expenses,
	}
	parsed := make(map[string]decimal.Decimal, len(amounts))
	for name, s := range amounts {
		v, err := decimal.NewFromString(s)
		if err != nil {
			return nil, goerr.Wrap(model.ErrInvalidInput, "amount is not a number",
				goerr.V("flag", name), goerr.V("value", s))
		}
		parsed[name] = v
	}

	return &model.QuickCheckInput{
		TotalDebt:       parsed["debt"],
		MonthlyIncome:   parsed["income"],
		MonthlyExpenses: parsed["expenses"],
		AllReturnsFiled: returnsFiled,
	}, nil
}

func printQuickCheck(w io.Writer, result *model.QuickCheckResult) {
	bold := color.New(color.Bold)
	likely := color.New(color.FgGreen, color.Bold)
	possible := color.New(color.FgYellow)
	warn := color.New(color.FgRed, color.Bold)

	_, _ = bold.Fprintln(w, "Relief pre-screen")
	_, _ = fmt.Fprintf(w, "  Disposable income: %s\n", result.DisposableIncome.StringFixed(2))
	if result.DebtToIncomeRatio != nil {
		_, _ = fmt.Fprintf(w, "  Debt to income:    %.2f\n", *result.DebtToIncomeRatio)
	}
	if result.DisposableIncomeRatio != nil {
		_, _ = fmt.Fprintf(w, "  Disposable ratio:  %.2f\n", *result.DisposableIncomeRatio)
	}

	if result.NeedsFiling {
		_, _ = warn.Fprintln(w, "  Unfiled returns must be filed first")
	}
	for _, p := range result.Programs {
		c := possible
		if p.Likelihood == types.LikelihoodLikely {
			c = likely
		}
		_, _ = c.Fprintf(w, "  %-28s %s\n", p.Program.DisplayName(), p.Likelihood)
	}

	_, _ = fmt.Fprintln(w, result.Message)
}
